package mailer

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"net/textproto"
	"sort"
	"strings"
	"time"
)

var (
	errNoRecipients = errors.New("mailer: at least one recipient required")
	errNoFrom       = errors.New("mailer: from address required")
	errNoSubject    = errors.New("mailer: subject required")
	errNoBody       = errors.New("mailer: text or html body required")
)

// buildMIMEMessage renders e as an RFC 5322 message. Bodies are
// quoted-printable so receipts with non-ASCII names survive 7-bit relays.
func buildMIMEMessage(e Email, messageIDDomain string) ([]byte, error) {
	if err := e.validate(); err != nil {
		return nil, err
	}

	var b bytes.Buffer
	h := func(k, v string) { fmt.Fprintf(&b, "%s: %s\r\n", k, v) }

	h("Date", time.Now().Format(time.RFC1123Z))
	h("Message-ID", newMessageID(messageIDDomain))
	h("From", (&mail.Address{Name: e.FromName, Address: e.From}).String())
	h("To", strings.Join(e.To, ", "))
	if len(e.Cc) > 0 {
		h("Cc", strings.Join(e.Cc, ", "))
	}
	h("Subject", mime.QEncoding.Encode("utf-8", e.Subject))
	h("MIME-Version", "1.0")

	extra := make([]string, 0, len(e.Headers))
	for k, v := range e.Headers {
		if k != "" && v != "" {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		h(textproto.CanonicalMIMEHeaderKey(k), e.Headers[k])
	}

	if e.TextBody == "" || e.HTMLBody == "" {
		ct, body := "text/plain; charset=UTF-8", e.TextBody
		if e.HTMLBody != "" {
			ct, body = "text/html; charset=UTF-8", e.HTMLBody
		}
		h("Content-Type", ct)
		h("Content-Transfer-Encoding", "quoted-printable")
		b.WriteString("\r\n")
		if err := writeQP(&b, body); err != nil {
			return nil, err
		}
		return b.Bytes(), nil
	}

	mw := multipart.NewWriter(&b)
	h("Content-Type", mime.FormatMediaType("multipart/alternative", map[string]string{"boundary": mw.Boundary()}))
	b.WriteString("\r\n")
	for _, part := range []struct{ ct, body string }{
		{"text/plain; charset=UTF-8", e.TextBody},
		{"text/html; charset=UTF-8", e.HTMLBody},
	} {
		pw, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {part.ct},
			"Content-Transfer-Encoding": {"quoted-printable"},
		})
		if err != nil {
			return nil, err
		}
		if err := writeQP(pw, part.body); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func writeQP(w io.Writer, body string) error {
	qp := quotedprintable.NewWriter(w)
	if _, err := qp.Write([]byte(body)); err != nil {
		return err
	}
	return qp.Close()
}

func newMessageID(domain string) string {
	b := make([]byte, 12)
	_, _ = rand.Read(b)
	return fmt.Sprintf("<%s@%s>", hex.EncodeToString(b), domain)
}
