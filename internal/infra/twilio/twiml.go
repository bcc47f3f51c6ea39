package twilio

import (
	"bytes"
	"encoding/xml"
)

type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message,omitempty"`
}

// Reply wraps a message body in the TwiML envelope Twilio expects back
// from a webhook. An empty body yields an empty <Response/>, which tells
// Twilio to send nothing.
func Reply(body string) []byte {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	_ = enc.Encode(twimlResponse{Message: body})
	buf.WriteByte('\n')
	return buf.Bytes()
}
