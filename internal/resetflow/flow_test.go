// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package resetflow

import (
	"context"
	"errors"
	"testing"

	"github.com/jeranaias/gearsync-tui/internal/api"
)

// fakeClient records calls and serves scripted responses.
type fakeClient struct {
	calls int

	forgotErr error
	verifyErr error
	resetErr  error

	resetToken string
}

func (f *fakeClient) ForgotPassword(ctx context.Context, email string) (api.StatusResult, error) {
	f.calls++
	if f.forgotErr != nil {
		return api.StatusResult{}, f.forgotErr
	}
	return api.StatusResult{Success: true, Message: "code sent"}, nil
}

func (f *fakeClient) VerifyOTP(ctx context.Context, email, otp string) (api.OTPVerification, error) {
	f.calls++
	if f.verifyErr != nil {
		return api.OTPVerification{}, f.verifyErr
	}
	return api.OTPVerification{ResetToken: f.resetToken, Message: "verified", ExpiresInMinutes: 5}, nil
}

func (f *fakeClient) ResetPassword(ctx context.Context, resetToken, newPassword, confirmPassword string) (api.StatusResult, error) {
	f.calls++
	if f.resetErr != nil {
		return api.StatusResult{}, f.resetErr
	}
	return api.StatusResult{Success: true, Message: "password updated"}, nil
}

func TestFlowHappyPath(t *testing.T) {
	client := &fakeClient{resetToken: "rt-1"}
	flow := New(client)
	ctx := context.Background()

	if flow.Step() != StepRequestOTP {
		t.Fatalf("initial step = %v", flow.Step())
	}

	if _, err := flow.SubmitEmail(ctx, "user@shop.io"); err != nil {
		t.Fatalf("SubmitEmail: %v", err)
	}
	if flow.Step() != StepVerifyOTP {
		t.Fatalf("step after email = %v", flow.Step())
	}

	if _, err := flow.SubmitOTP(ctx, "123456"); err != nil {
		t.Fatalf("SubmitOTP: %v", err)
	}
	if flow.Step() != StepNewPassword {
		t.Fatalf("step after otp = %v", flow.Step())
	}
	if flow.TokenExpiresInMinutes() != 5 {
		t.Errorf("TokenExpiresInMinutes = %d", flow.TokenExpiresInMinutes())
	}

	msg, err := flow.SubmitNewPassword(ctx, "newpw", "newpw")
	if err != nil {
		t.Fatalf("SubmitNewPassword: %v", err)
	}
	if msg != "password updated" {
		t.Errorf("message = %q", msg)
	}
	if flow.Step() != StepDone {
		t.Errorf("final step = %v", flow.Step())
	}
	if client.calls != 3 {
		t.Errorf("network calls = %d, want exactly 3", client.calls)
	}
}

// Locally invalid input must fail before any round trip.
func TestFlowLocalValidationSkipsNetwork(t *testing.T) {
	ctx := context.Background()

	t.Run("bad email", func(t *testing.T) {
		client := &fakeClient{}
		flow := New(client)
		if _, err := flow.SubmitEmail(ctx, "not-an-email"); !errors.Is(err, ErrInvalidEmail) {
			t.Errorf("err = %v, want ErrInvalidEmail", err)
		}
		if client.calls != 0 {
			t.Errorf("network calls = %d, want 0", client.calls)
		}
		if flow.Step() != StepRequestOTP {
			t.Errorf("step advanced on invalid input")
		}
	})

	t.Run("bad otp", func(t *testing.T) {
		client := &fakeClient{resetToken: "rt"}
		flow := New(client)
		flow.SubmitEmail(ctx, "user@shop.io")
		calls := client.calls
		for _, otp := range []string{"", "12345", "1234567", "12345a"} {
			if _, err := flow.SubmitOTP(ctx, otp); !errors.Is(err, ErrInvalidOTPFormat) {
				t.Errorf("SubmitOTP(%q) = %v, want ErrInvalidOTPFormat", otp, err)
			}
		}
		if client.calls != calls {
			t.Errorf("invalid codes reached the network")
		}
	})

	t.Run("bad password", func(t *testing.T) {
		client := &fakeClient{resetToken: "rt"}
		flow := New(client)
		flow.SubmitEmail(ctx, "user@shop.io")
		flow.SubmitOTP(ctx, "123456")
		calls := client.calls

		if _, err := flow.SubmitNewPassword(ctx, "1234", "1234"); !errors.Is(err, ErrPasswordTooShort) {
			t.Errorf("short password = %v, want ErrPasswordTooShort", err)
		}
		if _, err := flow.SubmitNewPassword(ctx, "longenough", "different"); !errors.Is(err, ErrPasswordMismatch) {
			t.Errorf("mismatch = %v, want ErrPasswordMismatch", err)
		}
		if client.calls != calls {
			t.Errorf("invalid passwords reached the network")
		}
	})
}

// Exactly five characters is the boundary: the backend accepts it.
func TestFlowMinimumPasswordLength(t *testing.T) {
	client := &fakeClient{resetToken: "rt"}
	flow := New(client)
	ctx := context.Background()
	flow.SubmitEmail(ctx, "user@shop.io")
	flow.SubmitOTP(ctx, "123456")

	if _, err := flow.SubmitNewPassword(ctx, "12345", "12345"); err != nil {
		t.Errorf("5-char password rejected: %v", err)
	}
}

func TestFlowBackOnlyFromVerify(t *testing.T) {
	client := &fakeClient{resetToken: "rt"}
	flow := New(client)
	ctx := context.Background()

	if err := flow.Back(); !errors.Is(err, ErrWrongStep) {
		t.Errorf("Back at start = %v, want ErrWrongStep", err)
	}

	flow.SubmitEmail(ctx, "user@shop.io")
	if err := flow.Back(); err != nil {
		t.Fatalf("Back from verify: %v", err)
	}
	if flow.Step() != StepRequestOTP {
		t.Errorf("step after Back = %v", flow.Step())
	}
}

func TestFlowRejectsOutOfOrderSteps(t *testing.T) {
	client := &fakeClient{}
	flow := New(client)
	ctx := context.Background()

	if _, err := flow.SubmitOTP(ctx, "123456"); !errors.Is(err, ErrWrongStep) {
		t.Errorf("SubmitOTP at start = %v, want ErrWrongStep", err)
	}
	if _, err := flow.SubmitNewPassword(ctx, "longenough", "longenough"); !errors.Is(err, ErrWrongStep) {
		t.Errorf("SubmitNewPassword at start = %v, want ErrWrongStep", err)
	}
	if client.calls != 0 {
		t.Errorf("out-of-order steps reached the network")
	}
}

// A success-shaped verify response without a token is unusable.
func TestFlowCorruptedVerifyResponse(t *testing.T) {
	client := &fakeClient{resetToken: ""}
	flow := New(client)
	ctx := context.Background()
	flow.SubmitEmail(ctx, "user@shop.io")

	if _, err := flow.SubmitOTP(ctx, "123456"); !errors.Is(err, ErrFlowCorrupted) {
		t.Errorf("err = %v, want ErrFlowCorrupted", err)
	}
	if flow.Step() != StepVerifyOTP {
		t.Errorf("step = %v, want to stay on verify", flow.Step())
	}
}

// A backend rejection keeps the current step so the user can retry.
func TestFlowRetrySameStepAfterBackendRejection(t *testing.T) {
	client := &fakeClient{resetToken: "rt", verifyErr: api.ErrInvalidOTP}
	flow := New(client)
	ctx := context.Background()
	flow.SubmitEmail(ctx, "user@shop.io")

	if _, err := flow.SubmitOTP(ctx, "111111"); !errors.Is(err, api.ErrInvalidOTP) {
		t.Fatalf("err = %v, want ErrInvalidOTP", err)
	}
	if flow.Step() != StepVerifyOTP {
		t.Fatalf("step = %v after rejection", flow.Step())
	}

	client.verifyErr = nil
	if _, err := flow.SubmitOTP(ctx, "123456"); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if flow.Step() != StepNewPassword {
		t.Errorf("step = %v after retry", flow.Step())
	}
}
