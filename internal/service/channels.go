package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

var errChannelDisabled = errors.New("channel not configured")

type EmailSender interface {
	SendEmail(toEmail, toName, subject, plainText, html string) error
}

type SMSSender interface {
	SendSMS(toNumber, body string) error
}

func circuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 2
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(log.Fields{"breaker": name, "from": from.String(), "to": to.String()}).Warn("circuit breaker state changed")
		},
	})
}

type SendGridSender struct {
	apiKey    string
	fromEmail string
	fromName  string
	cb        *gobreaker.CircuitBreaker
}

func NewSendGridSender(apiKey, fromEmail, fromName string) *SendGridSender {
	return &SendGridSender{apiKey: apiKey, fromEmail: fromEmail, fromName: fromName, cb: circuitBreaker("sendgrid")}
}

func (s *SendGridSender) SendEmail(toEmail, toName, subject, plainText, html string) error {
	if s.apiKey == "" || s.fromEmail == "" {
		return errChannelDisabled
	}
	message := mail.NewSingleEmail(mail.NewEmail(s.fromName, s.fromEmail), subject, mail.NewEmail(toName, toEmail), plainText, html)
	client := sendgrid.NewSendClient(s.apiKey)

	_, err := s.cb.Execute(func() (interface{}, error) {
		response, err := client.Send(message)
		if err != nil {
			return nil, err
		}
		if response.StatusCode < 200 || response.StatusCode >= 300 {
			return nil, fmt.Errorf("sendgrid returned status %d: %s", response.StatusCode, response.Body)
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("sending email to %s: %w", toEmail, err)
	}
	return nil
}

type TwilioSender struct {
	client     *twilio.RestClient
	fromNumber string
	cb         *gobreaker.CircuitBreaker
}

func NewTwilioSender(accountSID, authToken, fromNumber string) *TwilioSender {
	s := &TwilioSender{fromNumber: fromNumber, cb: circuitBreaker("twilio")}
	if accountSID != "" && authToken != "" {
		s.client = twilio.NewRestClientWithParams(twilio.ClientParams{
			Username:   accountSID,
			Password:   authToken,
			AccountSid: accountSID,
		})
	}
	return s
}

func (s *TwilioSender) SendSMS(toNumber, body string) error {
	if s.client == nil || s.fromNumber == "" {
		return errChannelDisabled
	}
	if !strings.HasPrefix(toNumber, "+") {
		return fmt.Errorf("phone number %q is not in E.164 format", toNumber)
	}

	params := &openapi.CreateMessageParams{}
	params.SetTo(toNumber)
	params.SetFrom(s.fromNumber)
	params.SetBody(body)

	_, err := s.cb.Execute(func() (interface{}, error) {
		return s.client.Api.CreateMessage(params)
	})
	if err != nil {
		return fmt.Errorf("sending SMS: %w", err)
	}
	return nil
}
