package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/civichub/society-api/internal/api/middleware"
	"github.com/civichub/society-api/internal/core/domain"
	"github.com/civichub/society-api/internal/core/ports"
)

type stubComplaintService struct {
	submitFn  func(ctx context.Context, caller domain.Identity, in ports.SubmitComplaintInput) (*ports.SubmitComplaintResult, error)
	listOwnFn func(ctx context.Context, ownerID string) ([]*domain.Complaint, error)
	listAllFn func(ctx context.Context, caller domain.Identity) ([]domain.ComplaintView, error)
	updateFn  func(ctx context.Context, caller domain.Identity, id, status string) (*domain.Complaint, error)
}

func (s *stubComplaintService) Submit(ctx context.Context, caller domain.Identity, in ports.SubmitComplaintInput) (*ports.SubmitComplaintResult, error) {
	return s.submitFn(ctx, caller, in)
}

func (s *stubComplaintService) ListOwn(ctx context.Context, ownerID string) ([]*domain.Complaint, error) {
	return s.listOwnFn(ctx, ownerID)
}

func (s *stubComplaintService) ListAll(ctx context.Context, caller domain.Identity) ([]domain.ComplaintView, error) {
	return s.listAllFn(ctx, caller)
}

func (s *stubComplaintService) UpdateStatus(ctx context.Context, caller domain.Identity, id, status string) (*domain.Complaint, error) {
	return s.updateFn(ctx, caller, id, status)
}

var (
	resident = domain.Identity{SubjectID: "alice", Role: domain.RoleResident}
	admin    = domain.Identity{SubjectID: "root", Role: domain.RoleAdmin}
)

func withIdentity(c echo.Context, identity domain.Identity) echo.Context {
	c.Set(middleware.IdentityKey, identity)
	return c
}

func sampleComplaint() *domain.Complaint {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return &domain.Complaint{ID: "c1", OwnerID: "alice", Issue: "Leaky faucet", Status: domain.StatusPending, CreatedAt: at, UpdatedAt: at}
}

func TestComplaintHandler_Submit_Created(t *testing.T) {
	e := newTestEcho()
	stub := &stubComplaintService{
		submitFn: func(ctx context.Context, caller domain.Identity, in ports.SubmitComplaintInput) (*ports.SubmitComplaintResult, error) {
			if caller != resident {
				t.Fatalf("unexpected caller: %+v", caller)
			}
			if in.Issue != "Leaky faucet" || in.IdempotencyKey != "k-1" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &ports.SubmitComplaintResult{Complaint: sampleComplaint()}, nil
		},
	}
	handler := NewComplaintHandler(stub)

	c, rec := jsonRequest(e, http.MethodPost, "/complaints", `{"issue":"Leaky faucet"}`)
	c.Request().Header.Set("Idempotency-Key", "k-1")
	withIdentity(c, resident)

	if err := handler.Submit(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp struct {
		Message   string         `json:"message"`
		Complaint map[string]any `json:"complaint"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Message != "Complaint submitted" {
		t.Fatalf("unexpected message: %q", resp.Message)
	}
	if resp.Complaint["status"] != "PENDING" || resp.Complaint["user_id"] != "alice" || resp.Complaint["id"] != "c1" {
		t.Fatalf("unexpected complaint payload: %+v", resp.Complaint)
	}
}

func TestComplaintHandler_Submit_Replay(t *testing.T) {
	e := newTestEcho()
	stub := &stubComplaintService{
		submitFn: func(ctx context.Context, caller domain.Identity, in ports.SubmitComplaintInput) (*ports.SubmitComplaintResult, error) {
			return &ports.SubmitComplaintResult{Complaint: sampleComplaint(), Replayed: true}, nil
		},
	}
	handler := NewComplaintHandler(stub)

	c, rec := jsonRequest(e, http.MethodPost, "/complaints", `{"issue":"Leaky faucet"}`)
	withIdentity(c, resident)

	if err := handler.Submit(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on replay, got %d", rec.Code)
	}
}

func TestComplaintHandler_Submit_MissingIssue(t *testing.T) {
	e := newTestEcho()
	handler := NewComplaintHandler(&stubComplaintService{})

	c, _ := jsonRequest(e, http.MethodPost, "/complaints", `{}`)
	withIdentity(c, resident)

	if err := handler.Submit(c); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestComplaintHandler_Submit_NoIdentity(t *testing.T) {
	e := newTestEcho()
	handler := NewComplaintHandler(&stubComplaintService{})

	c, _ := jsonRequest(e, http.MethodPost, "/complaints", `{"issue":"x"}`)
	expectHTTPError(t, handler.Submit(c), http.StatusUnauthorized)
}

func TestComplaintHandler_ListOwn(t *testing.T) {
	e := newTestEcho()
	stub := &stubComplaintService{
		listOwnFn: func(ctx context.Context, ownerID string) ([]*domain.Complaint, error) {
			if ownerID != "alice" {
				t.Fatalf("expected caller's id, got %q", ownerID)
			}
			return []*domain.Complaint{}, nil
		},
	}
	handler := NewComplaintHandler(stub)

	c, rec := jsonRequest(e, http.MethodGet, "/complaints/my", "")
	withIdentity(c, resident)

	if err := handler.ListOwn(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if body := rec.Body.String(); body != "[]\n" {
		t.Fatalf("expected empty JSON array, got %q", body)
	}
}

func TestComplaintHandler_ListAll_IncludesOwner(t *testing.T) {
	e := newTestEcho()
	stub := &stubComplaintService{
		listAllFn: func(ctx context.Context, caller domain.Identity) ([]domain.ComplaintView, error) {
			return []domain.ComplaintView{{
				Complaint: *sampleComplaint(),
				Owner:     &domain.ComplaintOwner{ID: "alice", Name: "Alice", Email: "alice@example.com"},
			}}, nil
		},
	}
	handler := NewComplaintHandler(stub)

	c, rec := jsonRequest(e, http.MethodGet, "/complaints/all", "")
	withIdentity(c, admin)

	if err := handler.ListAll(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	user, ok := resp[0]["user"].(map[string]any)
	if !ok || user["name"] != "Alice" || user["email"] != "alice@example.com" {
		t.Fatalf("expected owner contact details, got %+v", resp[0])
	}
}

func TestComplaintHandler_UpdateStatus(t *testing.T) {
	e := newTestEcho()
	stub := &stubComplaintService{
		updateFn: func(ctx context.Context, caller domain.Identity, id, status string) (*domain.Complaint, error) {
			if caller != admin || id != "c1" || status != "IN_PROGRESS" {
				t.Fatalf("unexpected args: %+v %s %s", caller, id, status)
			}
			c := sampleComplaint()
			c.Status = domain.StatusInProgress
			return c, nil
		},
	}
	handler := NewComplaintHandler(stub)

	c, rec := jsonRequest(e, http.MethodPut, "/complaints/c1/status", `{"status":"IN_PROGRESS"}`)
	c.SetParamNames("id")
	c.SetParamValues("c1")
	withIdentity(c, admin)

	if err := handler.UpdateStatus(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestComplaintHandler_UpdateStatus_ErrorsPropagate(t *testing.T) {
	for _, want := range []error{domain.ErrComplaintNotFound, domain.ErrInvalidTransition, domain.ErrForbidden} {
		e := newTestEcho()
		stub := &stubComplaintService{
			updateFn: func(ctx context.Context, caller domain.Identity, id, status string) (*domain.Complaint, error) {
				return nil, want
			},
		}
		handler := NewComplaintHandler(stub)

		c, _ := jsonRequest(e, http.MethodPut, "/complaints/c1/status", `{"status":"RESOLVED"}`)
		withIdentity(c, admin)

		if err := handler.UpdateStatus(c); !errors.Is(err, want) {
			t.Fatalf("expected %v, got %v", want, err)
		}
	}
}
