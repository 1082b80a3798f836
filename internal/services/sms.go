package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"

	"github.com/hanapp-ph/hanapp-backend/internal/utils"
)

// SMSSender delivers a text message to a canonical phone number
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// TwilioSMS sends through the Twilio Messages API behind a circuit breaker
type TwilioSMS struct {
	client *twilio.RestClient
	from   string
	cb     *gobreaker.CircuitBreaker
	log    *zap.Logger
}

func NewTwilioSMS(accountSID, authToken, from string, logger *zap.Logger) (*TwilioSMS, error) {
	if accountSID == "" || authToken == "" || from == "" {
		return nil, errors.New("missing Twilio credentials")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})

	st := gobreaker.Settings{
		Name:        "twilio-sms",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state", zap.String("name", name), zap.String("from", from.String()), zap.String("to", to.String()))
		},
	}

	return &TwilioSMS{
		client: client,
		from:   from,
		cb:     gobreaker.NewCircuitBreaker(st),
		log:    logger,
	}, nil
}

func (t *TwilioSMS) SendSMS(ctx context.Context, to, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(t.from)
	params.SetTo(to)
	params.SetBody(body)

	res, err := t.cb.Execute(func() (interface{}, error) {
		resp, err := t.client.Api.CreateMessage(params)
		if err != nil {
			return nil, err
		}
		if resp.ErrorCode != nil && *resp.ErrorCode != 0 {
			msg := ""
			if resp.ErrorMessage != nil {
				msg = *resp.ErrorMessage
			}
			return nil, fmt.Errorf("twilio error %d: %s", *resp.ErrorCode, msg)
		}
		return resp, nil
	})
	if err != nil {
		t.log.Error("failed to send sms", zap.String("to", utils.MaskPhone(to)), zap.Error(err))
		return err
	}

	if resp, ok := res.(*twilioApi.ApiV2010Message); ok && resp.Sid != nil {
		t.log.Info("sms sent", zap.String("sid", *resp.Sid))
	}
	return nil
}

// LogSMS writes messages to the log instead of sending them. The body,
// including any verification code, is logged in clear text, so it is only
// wired when app.env is development.
type LogSMS struct {
	log *zap.Logger
}

func NewLogSMS(logger *zap.Logger) *LogSMS {
	return &LogSMS{log: logger}
}

func (l *LogSMS) SendSMS(ctx context.Context, to, body string) error {
	l.log.Warn("sms gateway not configured, message logged only", zap.String("to", utils.MaskPhone(to)), zap.String("body", body))
	return nil
}

// FakeSMS records outgoing messages and can be told to fail
type FakeSMS struct {
	mu   sync.Mutex
	Sent []SentSMS
	Err  error
}

type SentSMS struct {
	To   string
	Body string
}

func (f *FakeSMS) SendSMS(ctx context.Context, to, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.Sent = append(f.Sent, SentSMS{To: to, Body: body})
	return nil
}

// Last returns the most recent message, if any
func (f *FakeSMS) Last() (SentSMS, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Sent) == 0 {
		return SentSMS{}, false
	}
	return f.Sent[len(f.Sent)-1], true
}
