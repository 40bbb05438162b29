package mailer

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMessage_ContentType(t *testing.T) {
	at := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

	plain := string(BuildMessage("from@x.io", Message{To: "to@x.io", Subject: "Hi", Body: "hello"}, at))
	assert.Contains(t, plain, "Content-Type: text/plain; charset=UTF-8\r\n")
	assert.True(t, strings.HasPrefix(plain, "To: to@x.io\r\nFrom: from@x.io\r\nSubject: Hi\r\n"))

	html := string(BuildMessage("from@x.io", Message{To: "to@x.io", Subject: "Hi", Body: "<html><p>hello</p></html>"}, at))
	assert.Contains(t, html, "Content-Type: text/html; charset=UTF-8\r\n")
}

func TestSMTPMailer_Send(t *testing.T) {
	m, err := NewSMTPMailer(SMTPConfig{Host: "smtp.mailtrap.io", Port: "2525", Username: "u", Password: "p", From: "noreply@x.io"})
	require.NoError(t, err)

	var gotAddr string
	var gotTo []string
	m.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo = addr, to
		return nil
	}
	require.NoError(t, m.Send(context.Background(), Message{To: "client@x.io", Subject: "Expiration Notice: site", Body: "body"}))
	assert.Equal(t, "smtp.mailtrap.io:2525", gotAddr)
	assert.Equal(t, []string{"client@x.io"}, gotTo)

	m.sendMail = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("relay down") }
	err = m.Send(context.Background(), Message{To: "client@x.io", Subject: "s", Body: "b"})
	assert.ErrorContains(t, err, "relay down")

	assert.Error(t, m.Send(context.Background(), Message{Subject: "s"}))
}

func TestNewSMTPMailer_Validation(t *testing.T) {
	_, err := NewSMTPMailer(SMTPConfig{Port: "25", From: "x@y.z"})
	assert.Error(t, err)
	_, err = NewSMTPMailer(SMTPConfig{Host: "h", Port: "25"})
	assert.Error(t, err)
}
