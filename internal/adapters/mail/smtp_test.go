package mail

import (
	"bytes"
	"context"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"
	"testing"
)

func TestBuildMIME_MultipartAlternative(t *testing.T) {
	raw := buildMIME("advisor@shop.example", Message{
		To:       "jane@example.com",
		Subject:  "Your Mac Health Report - Grade B+",
		TextBody: "plain body\nline two",
		HTMLBody: "<p>html body</p>",
	})

	parsed, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("parse message: %v", err)
	}
	if got := parsed.Header.Get("To"); got != "jane@example.com" {
		t.Fatalf("To=%q", got)
	}
	mediaType, params, err := mime.ParseMediaType(parsed.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/alternative" {
		t.Fatalf("content-type=%q err=%v", mediaType, err)
	}

	mr := multipart.NewReader(parsed.Body, params["boundary"])
	var types []string
	var bodies []string
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("next part: %v", err)
		}
		body, _ := io.ReadAll(part)
		types = append(types, part.Header.Get("Content-Type"))
		bodies = append(bodies, string(body))
	}

	if len(types) != 2 {
		t.Fatalf("parts=%d, want 2", len(types))
	}
	// text/plain 在前，text/html 在后。
	if !strings.HasPrefix(types[0], "text/plain") || !strings.HasPrefix(types[1], "text/html") {
		t.Fatalf("part order=%v", types)
	}
	if !strings.Contains(bodies[0], "plain body") || !strings.Contains(bodies[1], "<p>html body</p>") {
		t.Fatalf("bodies=%v", bodies)
	}
}

func TestBuildMIME_TextOnly(t *testing.T) {
	raw := buildMIME("advisor@shop.example", Message{
		To:       "jane@example.com",
		Subject:  "plain",
		TextBody: "hello",
	})
	if strings.Contains(string(raw), "text/html") {
		t.Fatal("text-only message should not carry an html part")
	}
}

func TestSend_RejectsBadRecipient(t *testing.T) {
	s := NewSMTPSender("localhost", 25, "", "", "advisor@shop.example")
	if err := s.Send(context.Background(), Message{To: "not-an-address", Subject: "x", TextBody: "y"}); err == nil {
		t.Fatal("invalid recipient should fail before dialing")
	}
}

func TestSend_HonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewSMTPSender("localhost", 25, "", "", "advisor@shop.example")
	if err := s.Send(ctx, Message{To: "jane@example.com"}); err == nil {
		t.Fatal("cancelled context should fail")
	}
}
