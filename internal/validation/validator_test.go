// Lowisko - Map-Centric Fishing Log and Lake Analytics
// Copyright 2026 Lowisko Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lowisko/lowisko

package validation

import (
	"strings"
	"testing"

	"github.com/lowisko/lowisko/internal/models"
)

func TestValidateRegisterRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     models.RegisterRequest
		wantErr bool
		wantTag string
	}{
		{
			name: "valid",
			req:  models.RegisterRequest{Username: "anna_w", Email: "a@b.pl", Password: "Haslo123"},
		},
		{
			name:    "username too short",
			req:     models.RegisterRequest{Username: "ab", Email: "a@b.pl", Password: "Haslo123"},
			wantErr: true,
			wantTag: "min",
		},
		{
			name:    "username with spaces",
			req:     models.RegisterRequest{Username: "anna w", Email: "a@b.pl", Password: "Haslo123"},
			wantErr: true,
			wantTag: "username_chars",
		},
		{
			name:    "bad email",
			req:     models.RegisterRequest{Username: "anna_w", Email: "not-an-email", Password: "Haslo123"},
			wantErr: true,
			wantTag: "email",
		},
		{
			name:    "password too short",
			req:     models.RegisterRequest{Username: "anna_w", Email: "a@b.pl", Password: "Ha1"},
			wantErr: true,
			wantTag: "min",
		},
		{
			name:    "password missing uppercase",
			req:     models.RegisterRequest{Username: "anna_w", Email: "a@b.pl", Password: "haslo123"},
			wantErr: true,
			wantTag: "password_strength",
		},
		{
			name:    "password missing digit",
			req:     models.RegisterRequest{Username: "anna_w", Email: "a@b.pl", Password: "HasloHaslo"},
			wantErr: true,
			wantTag: "password_strength",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.req)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				found := false
				for _, fe := range err.Errors() {
					if fe.Tag() == tt.wantTag {
						found = true
					}
				}
				if !found {
					t.Errorf("expected tag %q in %v", tt.wantTag, err)
				}
			}
		})
	}
}

func TestValidateCreateFishCatch(t *testing.T) {
	length := 52.5
	tests := []struct {
		name    string
		req     models.CreateFishCatch
		wantErr bool
	}{
		{
			name: "valid",
			req: models.CreateFishCatch{
				LakeID: "Jezioro Głębokie", Fish: "Szczupak", Length: &length,
				Date: "2026-08-30", Time: "06:15:00",
			},
		},
		{
			name:    "missing lake",
			req:     models.CreateFishCatch{Fish: "Szczupak", Date: "2026-08-30", Time: "06:15:00"},
			wantErr: true,
		},
		{
			name:    "bad date format",
			req:     models.CreateFishCatch{LakeID: "x", Fish: "Okoń", Date: "30.08.2026", Time: "06:15:00"},
			wantErr: true,
		},
		{
			name:    "impossible date",
			req:     models.CreateFishCatch{LakeID: "x", Fish: "Okoń", Date: "2026-02-30", Time: "06:15:00"},
			wantErr: true,
		},
		{
			name:    "time without seconds",
			req:     models.CreateFishCatch{LakeID: "x", Fish: "Okoń", Date: "2026-08-30", Time: "06:15"},
			wantErr: true,
		},
		{
			name: "negative length",
			req: func() models.CreateFishCatch {
				neg := -3.0
				return models.CreateFishCatch{LakeID: "x", Fish: "Okoń", Length: &neg, Date: "2026-08-30", Time: "06:15:00"}
			}(),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.req)
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestToAPIErrorSingleAndMultiple(t *testing.T) {
	req := models.RegisterRequest{Username: "anna_w", Email: "a@b.pl", Password: "haslo123"}
	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("expected validation error")
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("code = %q", apiErr.Code)
	}
	if !strings.Contains(apiErr.Message, "Password") {
		t.Errorf("message = %q", apiErr.Message)
	}

	empty := models.RegisterRequest{}
	multi := ValidateStruct(&empty)
	if multi == nil {
		t.Fatal("expected validation errors")
	}
	if len(multi.Errors()) < 3 {
		t.Errorf("expected errors for all fields, got %v", multi)
	}
	if multiErr := multi.ToAPIError(); multiErr.Details["fields"] == nil {
		t.Errorf("multi-error details = %v", multiErr.Details)
	}
}
