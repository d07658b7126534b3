package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"qonevo.in/fieldops/models"
)

func TestCheckTransition(t *testing.T) {
	tests := []struct {
		current string
		action  string
		allowed bool
	}{
		{models.JobScheduled, "start", true},
		{models.JobInProgress, "start", false},
		{models.JobCancelled, "start", false},

		{models.JobInProgress, "complete", true},
		{models.JobCompletedFull, "complete", true},
		{models.JobCompletedPartial, "complete", true},
		{models.JobScheduled, "complete", false},
		{models.JobVerified, "complete", false},
		{models.JobClosed, "complete", false},

		{models.JobCompletedFull, "verify", true},
		{models.JobCompletedPartial, "verify", true},
		{models.JobInProgress, "verify", false},
		{models.JobVerified, "verify", false},

		{models.JobVerified, "close", true},
		{models.JobCompletedFull, "close", false},
		{models.JobCancelled, "close", false},
	}

	for _, tt := range tests {
		t.Run(tt.action+" from "+tt.current, func(t *testing.T) {
			err := checkTransition(tt.current, tt.action)
			if tt.allowed && err != nil {
				t.Errorf("transition rejected: %v", err)
			}
			if !tt.allowed && err == nil {
				t.Error("transition should have been rejected")
			}
		})
	}
}

func TestCheckTransitionUnknownAction(t *testing.T) {
	if err := checkTransition(models.JobScheduled, "reopen"); err == nil {
		t.Error("unknown action accepted")
	}
}

func TestCompletionRequirements(t *testing.T) {
	sig := "data:image/png;base64,..."
	empty := ""

	tests := []struct {
		name    string
		job     models.InstallationJob
		wantErr bool
	}{
		{
			name:    "no photos",
			job:     models.InstallationJob{CustomerSignature: &sig},
			wantErr: true,
		},
		{
			name:    "no signature",
			job:     models.InstallationJob{Photos: []string{"/uploads/a.jpg"}},
			wantErr: true,
		},
		{
			name:    "blank signature",
			job:     models.InstallationJob{Photos: []string{"/uploads/a.jpg"}, CustomerSignature: &empty},
			wantErr: true,
		},
		{
			name:    "photo and signature present",
			job:     models.InstallationJob{Photos: []string{"/uploads/a.jpg"}, CustomerSignature: &sig},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := completionRequirements(&tt.job)
			if (err != nil) != tt.wantErr {
				t.Errorf("completionRequirements() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestVerifyRequirements(t *testing.T) {
	immediate := models.WarrantyStartImmediate
	delay := models.WarrantyStartDelay
	empty := ""

	tests := []struct {
		name    string
		action  *string
		wantErr bool
	}{
		{"missing decision", nil, true},
		{"blank decision", &empty, true},
		{"immediate", &immediate, false},
		{"delay", &delay, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := models.InstallationJob{WarrantyStartAction: tt.action}
			err := verifyRequirements(&job)
			if (err != nil) != tt.wantErr {
				t.Errorf("verifyRequirements() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestJobActionHandlersRejectMalformedBody(t *testing.T) {
	handlers := map[string]http.HandlerFunc{
		"start":    StartInstallationJob,
		"complete": CompleteInstallationJob,
		"verify":   VerifyInstallationJob,
	}

	for name, handler := range handlers {
		t.Run(name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/api/v1/installation-jobs/abc/"+name, strings.NewReader("{"))
			w := httptest.NewRecorder()
			handler(w, r)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, expected 400", w.Code)
			}
		})
	}
}
