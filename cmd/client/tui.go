// Lowisko - Map-Centric Fishing Log and Lake Analytics
// Copyright 2026 Lowisko Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lowisko/lowisko

package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lowisko/lowisko/internal/mapstate"
	"github.com/lowisko/lowisko/internal/supervisor/services"
)

// lake is a map feature the client can select. The property bag mirrors
// what the web map attaches to a clicked lake polygon.
type lake struct {
	name      string
	longitude float64
	latitude  float64
	depth     float64
	species   string
}

var demoLakes = []lake{
	{"Jezioro Głębokie", 14.6249, 53.3714, 24.5, "Szczupak, Okoń, Lin"},
	{"Jezioro Szmaragdowe", 14.5894, 53.3925, 17.0, "Okoń, Płoć"},
	{"Jezioro Dąbie", 14.6410, 53.4620, 4.2, "Sandacz, Leszcz"},
}

func (l lake) properties() mapstate.Properties {
	return mapstate.Properties{
		"name":    mapstate.String(l.name),
		"depth":   mapstate.Number(l.depth),
		"species": mapstate.String(l.species),
	}
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	drawerStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statusStyle   = lipgloss.NewStyle().Faint(true)
)

// stateMsg carries a store snapshot into the bubbletea loop.
type stateMsg mapstate.State

type mapModel struct {
	store      *mapstate.Store
	updates    chan mapstate.State
	unsub      func()
	closeDelay time.Duration

	state  mapstate.State
	lakes  []lake
	cursor int
	status string
	width  int
}

func newMapModel(store *mapstate.Store, closeDelay time.Duration) *mapModel {
	if closeDelay <= 0 {
		closeDelay = mapstate.DefaultCloseDelay
	}
	m := &mapModel{
		store:      store,
		updates:    make(chan mapstate.State, 8),
		closeDelay: closeDelay,
		state:      store.State(),
		lakes:      demoLakes,
		status:     "strzałki: wybór i przesuwanie, enter: otwórz, esc: zamknij, q: wyjście",
	}
	m.unsub = store.Subscribe(func(s mapstate.State) {
		// Drop updates when the loop is behind; the next one wins.
		select {
		case m.updates <- s:
		default:
		}
	})
	return m
}

func (m *mapModel) waitForState() tea.Cmd {
	return func() tea.Msg {
		return stateMsg(<-m.updates)
	}
}

func (m *mapModel) Init() tea.Cmd {
	return m.waitForState()
}

func (m *mapModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case stateMsg:
		m.state = mapstate.State(msg)
		return m, m.waitForState()

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.unsub()
			return m, tea.Quit

		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.lakes)-1 {
				m.cursor++
			}

		case "enter":
			l := m.lakes[m.cursor]
			m.store.OpenDrawer(l.longitude, l.latitude, l.properties())
			m.status = fmt.Sprintf("otwarto: %s", l.name)

		case "esc":
			m.store.CloseDrawer(m.closeDelay)
			m.status = "zamykanie szuflady"

		case "+", "=":
			m.store.Dispatch(mapstate.SetZoom{Zoom: m.store.Zoom() + 1})
		case "-":
			m.store.Dispatch(mapstate.SetZoom{Zoom: m.store.Zoom() - 1})

		case "left":
			m.pan(-panStep(m.store.Zoom()), 0)
		case "right":
			m.pan(panStep(m.store.Zoom()), 0)
		case "shift+up":
			m.pan(0, panStep(m.store.Zoom()))
		case "shift+down":
			m.pan(0, -panStep(m.store.Zoom()))

		case "g":
			l := m.lakes[m.cursor]
			lon, lat := l.longitude, l.latitude
			m.store.Dispatch(mapstate.SetViewState{Longitude: &lon, Latitude: &lat})
			m.status = fmt.Sprintf("wyśrodkowano na %s", l.name)
		}
		return m, nil
	}
	return m, nil
}

// panStep shrinks with zoom so panning feels uniform on screen.
func panStep(zoom float64) float64 {
	step := 0.1
	for z := 10.0; z < zoom; z++ {
		step /= 2
	}
	return step
}

func (m *mapModel) pan(dlon, dlat float64) {
	lon, lat := m.store.Center()
	lon += dlon
	lat += dlat
	m.store.Dispatch(mapstate.SetViewState{Longitude: &lon, Latitude: &lat})
}

func (m *mapModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Lowisko — mapa jezior"))
	b.WriteString("\n\n")

	for i, l := range m.lakes {
		line := "  " + l.name
		if i == m.cursor {
			line = selectedStyle.Render("> " + l.name)
		}
		if sel := m.state.SelectedLakeID; sel != nil && *sel == l.name {
			line += " *"
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	lon, lat := m.state.Longitude, m.state.Latitude
	b.WriteString(fmt.Sprintf("\nwidok: zoom %.1f  (%.5f, %.5f)\n", m.state.Zoom, lon, lat))

	if popup := m.state.Popup; popup != nil {
		var d strings.Builder
		phase := m.state.Phase().String()
		name := ""
		if sel := m.state.SelectedLakeID; sel != nil {
			name = *sel
		}
		d.WriteString(fmt.Sprintf("%s [%s]\n", name, phase))
		if depth, ok := popup.Properties["depth"].AsNumber(); ok {
			d.WriteString(fmt.Sprintf("głębokość: %.1f m\n", depth))
		}
		if species, ok := popup.Properties["species"].AsString(); ok {
			d.WriteString("ryby: " + species)
		}
		b.WriteString("\n" + drawerStyle.Render(d.String()) + "\n")
	}

	b.WriteString("\n" + statusStyle.Render(m.status) + "\n")
	return b.String()
}

// startLocalStoreGC runs value log compaction for as long as the map is
// open. Badger never reclaims value log space on its own, and the map is
// the one long-lived client session.
func (a *app) startLocalStoreGC() (stop func()) {
	if a.gc == nil {
		return func() {}
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	svc := services.NewLocalStoreGCService(a.gc, a.gcInterval)
	go func() {
		defer close(done)
		_ = svc.Serve(ctx)
	}()
	return func() {
		cancel()
		<-done
	}
}

// runMap opens the interactive lake map. Map state is restored from and
// persisted to the local store across runs; the first run starts from the
// configured default viewport.
func (a *app) runMap() error {
	stopGC := a.startLocalStoreGC()
	defer stopGC()

	codec := mapstate.NewCodec(a.store)
	initial, ok := codec.LoadSnapshot()
	if !ok {
		m := a.cfg.Map
		initial = mapstate.StateWithViewport(m.DefaultZoom, m.DefaultLongitude, m.DefaultLatitude)
	}
	store := mapstate.NewStore(initial, codec)

	p := tea.NewProgram(newMapModel(store, a.cfg.Map.DrawerCloseDelay), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("map ui: %w", err)
	}
	return nil
}
