package twilio

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"net/url"
	"strings"
	"testing"
)

func TestReplyEscapesBody(t *testing.T) {
	out := string(Reply(`Saved: [meeting] sync <at> 4pm & done`))
	if !strings.Contains(out, "<Response>") || !strings.Contains(out, "</Response>") {
		t.Fatalf("missing envelope: %s", out)
	}
	if !strings.Contains(out, "&lt;at&gt;") || !strings.Contains(out, "&amp;") {
		t.Errorf("body not XML-escaped: %s", out)
	}
}

func TestReplyEmptyBody(t *testing.T) {
	out := string(Reply(""))
	if strings.Contains(out, "<Message>") {
		t.Errorf("empty reply must omit <Message>: %s", out)
	}
}

func TestValidateSignature(t *testing.T) {
	const token = "12345"
	const fullURL = "https://example.com/webhook/whatsapp"
	form := url.Values{}
	form.Set("From", "whatsapp:+919800000001")
	form.Set("Body", "meeting tomorrow 4pm")

	// Expected digest computed the same way Twilio documents it.
	mac := hmac.New(sha1.New, []byte(token))
	mac.Write([]byte(fullURL))
	for _, k := range []string{"Body", "From"} { // sorted keys
		mac.Write([]byte(k))
		mac.Write([]byte(form.Get(k)))
	}
	sig := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	if !ValidateSignature(token, fullURL, form, sig) {
		t.Error("valid signature rejected")
	}
	if ValidateSignature(token, fullURL, form, "bogus") {
		t.Error("bogus signature accepted")
	}
	if ValidateSignature("other-token", fullURL, form, sig) {
		t.Error("signature accepted with wrong token")
	}
	if ValidateSignature(token, fullURL, form, "") {
		t.Error("empty signature accepted")
	}
}
