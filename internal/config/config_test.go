package config

import "testing"

const minimalYAML = `
database:
  url: postgres://localhost:5432/assistant
redis:
  url: localhost:6379
twilio:
  account_sid: ACxxxx
  auth_token: secret
  whatsapp_number: "+14155238886"
`

func TestParseDefaults(t *testing.T) {
	cfg, err := parse([]byte(minimalYAML))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Digest.Hour != 19 {
		t.Errorf("digest.hour default = %d, want 19", cfg.Digest.Hour)
	}
	if cfg.Digest.ToleranceMin != 10 {
		t.Errorf("digest.tolerance_min default = %d, want 10", cfg.Digest.ToleranceMin)
	}
	if cfg.Digest.Timezone != "Asia/Kolkata" {
		t.Errorf("digest.timezone default = %q", cfg.Digest.Timezone)
	}
	if cfg.Assistant.RolloverHour != 5 {
		t.Errorf("assistant.rollover_hour default = %d, want 5", cfg.Assistant.RolloverHour)
	}
	if cfg.Assistant.RateLimitPerMin != 20 {
		t.Errorf("assistant.rate_limit_per_min default = %d, want 20", cfg.Assistant.RateLimitPerMin)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Errorf("log defaults = %q/%q", cfg.Log.Level, cfg.Log.Format)
	}
}

func TestParseOverrides(t *testing.T) {
	yml := minimalYAML + `
digest:
  hour: 7
  tolerance_min: 30
  timezone: UTC
assistant:
  rollover_hour: 4
`
	cfg, err := parse([]byte(yml))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Digest.Hour != 7 || cfg.Digest.ToleranceMin != 30 || cfg.Digest.Timezone != "UTC" {
		t.Errorf("digest overrides not applied: %+v", cfg.Digest)
	}
	if cfg.Assistant.RolloverHour != 4 {
		t.Errorf("rollover override not applied: %d", cfg.Assistant.RolloverHour)
	}
}

func TestParseValidation(t *testing.T) {
	cases := map[string]string{
		"missing database": `
redis: {url: localhost:6379}
twilio: {account_sid: AC, auth_token: s, whatsapp_number: "+1"}
`,
		"missing twilio number": `
database: {url: postgres://x}
redis: {url: localhost:6379}
twilio: {account_sid: AC, auth_token: s}
`,
	}
	for name, yml := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := parse([]byte(yml)); err == nil {
				t.Fatal("expected validation error, got nil")
			}
		})
	}
}
