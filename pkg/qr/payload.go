package qr

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/matzehuels/deskkit/pkg/errors"
)

// Payload is anything that can be rendered into QR content.
type Payload interface {
	Content() (string, error)
}

// Text is free-form content, encoded as-is.
type Text string

func (t Text) Content() (string, error) {
	if strings.TrimSpace(string(t)) == "" {
		return "", errors.New(errors.ErrCodeInvalidInput, "QR content is empty")
	}
	return string(t), nil
}

// URL is a web address. A missing scheme defaults to https.
type URL string

func (u URL) Content() (string, error) {
	s := strings.TrimSpace(string(u))
	if s == "" {
		return "", errors.New(errors.ErrCodeInvalidInput, "URL is empty")
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	if _, err := url.Parse(s); err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid URL %q", string(u))
	}
	return s, nil
}

// VCard is a contact card in vCard 3.0 format.
type VCard struct {
	Name    string
	Org     string
	Title   string
	Phone   string
	Email   string
	URL     string
	Address string
}

func (v VCard) Content() (string, error) {
	if strings.TrimSpace(v.Name) == "" {
		return "", errors.New(errors.ErrCodeInvalidInput, "contact name is required")
	}
	lines := []string{"BEGIN:VCARD", "VERSION:3.0"}
	add := func(prefix, value string) {
		if value != "" {
			lines = append(lines, prefix+vcardEscape(value))
		}
	}
	add("FN:", v.Name)
	add("ORG:", v.Org)
	add("TITLE:", v.Title)
	add("TEL:", v.Phone)
	add("EMAIL:", v.Email)
	add("URL:", v.URL)
	add("ADR:", v.Address)
	lines = append(lines, "END:VCARD")
	return strings.Join(lines, "\r\n"), nil
}

func vcardEscape(s string) string {
	return strings.NewReplacer(`\`, `\\`, ",", `\,`, ";", `\;`, "\n", `\n`).Replace(s)
}

// Security is a WiFi authentication type.
type Security string

const (
	WPA    Security = "WPA"
	WEP    Security = "WEP"
	NoPass Security = "nopass"
)

// WiFi is a network join payload in the WIFI: scheme.
type WiFi struct {
	SSID     string
	Password string
	Security Security
	Hidden   bool
}

func (w WiFi) Content() (string, error) {
	if w.SSID == "" {
		return "", errors.New(errors.ErrCodeInvalidInput, "SSID is required")
	}
	sec := w.Security
	switch strings.ToUpper(string(sec)) {
	case "", "WPA", "WPA2", "WPA3":
		sec = WPA
	case "WEP":
		sec = WEP
	case "NOPASS", "NONE", "OPEN":
		sec = NoPass
	default:
		return "", errors.New(errors.ErrCodeInvalidInput, "unknown WiFi security %q (must be WPA, WEP or nopass)", w.Security)
	}
	if sec != NoPass && w.Password == "" {
		return "", errors.New(errors.ErrCodeInvalidInput, "password is required for %s networks", sec)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "WIFI:T:%s;S:%s;", sec, wifiEscape(w.SSID))
	if sec != NoPass {
		fmt.Fprintf(&b, "P:%s;", wifiEscape(w.Password))
	}
	if w.Hidden {
		b.WriteString("H:true;")
	}
	b.WriteString(";")
	return b.String(), nil
}

func wifiEscape(s string) string {
	return strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, ":", `\:`, `"`, `\"`).Replace(s)
}

// Geo is a geographic location.
type Geo struct {
	Lat float64
	Lng float64
}

func (g Geo) Content() (string, error) {
	if g.Lat < -90 || g.Lat > 90 {
		return "", errors.New(errors.ErrCodeInvalidInput, "latitude %g out of range", g.Lat)
	}
	if g.Lng < -180 || g.Lng > 180 {
		return "", errors.New(errors.ErrCodeInvalidInput, "longitude %g out of range", g.Lng)
	}
	return "geo:" + strconv.FormatFloat(g.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(g.Lng, 'f', -1, 64), nil
}

// Email is a mailto: link with optional subject and body.
type Email struct {
	To      string
	Subject string
	Body    string
}

func (e Email) Content() (string, error) {
	if e.To == "" {
		return "", errors.New(errors.ErrCodeInvalidInput, "recipient is required")
	}
	s := "mailto:" + e.To
	var params []string
	if e.Subject != "" {
		params = append(params, "subject="+url.QueryEscape(e.Subject))
	}
	if e.Body != "" {
		params = append(params, "body="+url.QueryEscape(e.Body))
	}
	if len(params) > 0 {
		s += "?" + strings.Join(params, "&")
	}
	return s, nil
}

// SMS is a prefilled text message.
type SMS struct {
	Number  string
	Message string
}

func (s SMS) Content() (string, error) {
	if s.Number == "" {
		return "", errors.New(errors.ErrCodeInvalidInput, "phone number is required")
	}
	return "SMSTO:" + s.Number + ":" + s.Message, nil
}

// Phone is a tel: link.
type Phone string

func (p Phone) Content() (string, error) {
	n := strings.TrimSpace(string(p))
	if n == "" {
		return "", errors.New(errors.ErrCodeInvalidInput, "phone number is required")
	}
	return "tel:" + n, nil
}
