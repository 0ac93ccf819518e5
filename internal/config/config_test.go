package config

import "testing"

func TestUnmarshalDefaultsAndEnvOverride(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_env")
	t.Setenv("STRIPE_CURRENCY", " USD ")
	t.Setenv("STRIPE_FRONTEND_URL", "https://aipath.example/")

	cfg, err := unmarshal(newViper())
	if err != nil {
		t.Fatalf("unmarshal config failed: %v", err)
	}
	if cfg.Stripe.WebhookSecret != "whsec_env" {
		t.Fatalf("webhook secret want whsec_env got %q", cfg.Stripe.WebhookSecret)
	}
	if cfg.Stripe.Currency != "usd" {
		t.Fatalf("currency want usd got %q", cfg.Stripe.Currency)
	}
	if cfg.Stripe.FrontendURL != "https://aipath.example" {
		t.Fatalf("frontend url want trimmed got %q", cfg.Stripe.FrontendURL)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Fatalf("database driver want sqlite got %q", cfg.Database.Driver)
	}
	if cfg.Queue.ReconcileMaxRetry != 8 {
		t.Fatalf("reconcile max retry want 8 got %d", cfg.Queue.ReconcileMaxRetry)
	}
}

func TestAffiliateRate(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{raw: "0.10", want: "0.1"},
		{raw: "0.25", want: "0.25"},
		{raw: "", want: "0.1"},
		{raw: "abc", want: "0.1"},
		{raw: "-0.2", want: "0.1"},
		{raw: "1.5", want: "0.1"},
	}
	for _, tc := range cases {
		got := AffiliateConfig{CommissionRate: tc.raw}.Rate()
		if got.String() != tc.want {
			t.Fatalf("rate(%q) want %s got %s", tc.raw, tc.want, got.String())
		}
	}
}

func TestValidateRequiresStripeSecrets(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{Driver: "sqlite"}}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error when stripe secret key missing")
	}
	cfg.Stripe.SecretKey = "sk_test_1"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error when webhook secret missing")
	}
	cfg.Stripe.WebhookSecret = "whsec_1"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	cfg.Database.Driver = "mysql"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected unsupported driver error")
	}
}
