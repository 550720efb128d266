package core

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestRedactSensitiveMap(t *testing.T) {
	in := map[string]any{
		"username":      "analyst",
		"password":      "hunter2",
		"access_token":  "eyJ...",
		"client_secret": "comfy",
		"token_url":     "https://auth.example/token",
		"nested": map[string]any{
			"Authorization": "Bearer abc",
			"items":         []any{map[string]any{"refresh_token": "r"}},
		},
	}
	out := RedactSensitiveMap(in)
	if out["username"] != "analyst" || out["token_url"] != "https://auth.example/token" {
		t.Fatalf("expected public keys kept, got %v", out)
	}
	for _, key := range []string{"password", "access_token", "client_secret"} {
		if out[key] != RedactedValue {
			t.Fatalf("expected %s redacted, got %v", key, out[key])
		}
	}
	nested := out["nested"].(map[string]any)
	if nested["Authorization"] != RedactedValue {
		t.Fatalf("expected nested authorization redacted")
	}
	item := nested["items"].([]any)[0].(map[string]any)
	if item["refresh_token"] != RedactedValue {
		t.Fatalf("expected refresh token in slice redacted")
	}
	if in["password"] != "hunter2" {
		t.Fatalf("expected input map untouched")
	}
}

func TestCredentialAndTokenFormatting(t *testing.T) {
	cred := Credential{Username: "analyst", Password: "hunter2"}
	for _, text := range []string{cred.String(), fmt.Sprintf("%v", cred), fmt.Sprintf("%+v", cred)} {
		if strings.Contains(text, "hunter2") {
			t.Fatalf("password leaked in %q", text)
		}
	}
	token := TokenData{AccessToken: "secret-token", ExpiresIn: 60, IssuedAt: time.Now()}
	if strings.Contains(fmt.Sprint(token), "secret-token") {
		t.Fatalf("access token leaked in %q", fmt.Sprint(token))
	}
	out := RedactSensitiveMap(map[string]any{"who": cred})
	if strings.Contains(fmt.Sprint(out["who"]), "hunter2") {
		t.Fatalf("password leaked through metadata")
	}
}
