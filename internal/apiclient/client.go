// Package apiclient talks to the notes HTTP API on behalf of the CLI.
package apiclient

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"ai-notes-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// APIError is a non 2xx answer carrying the server's errorMessage.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return e.Message
}

type Client struct {
	baseURL string
	http    *fiber.Client
	timeout time.Duration
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &fiber.Client{UserAgent: "ai-notes-cli"},
		timeout: timeout,
	}
}

type errorBody struct {
	ErrorMessage *string `json:"errorMessage"`
}

// Login signs in and returns the session token.
func (c *Client) Login(email, password string) (string, error) {
	var out struct {
		errorBody
		Token string `json:"token"`
	}
	agent := c.http.Post(c.baseURL + "/login").JSON(map[string]string{"email": email, "password": password})
	if err := c.do(agent, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

// Ask sends question together with the client owned history and returns the
// sanitized HTML answer.
func (c *Client) Ask(token, question string, history []models.ChatMessage) (string, error) {
	var out struct {
		errorBody
		Answer string `json:"answer"`
	}
	agent := c.http.Post(c.baseURL + "/api/v1/chat").
		JSON(map[string]any{"question": question, "history": history})
	if err := c.do(withToken(agent, token), &out); err != nil {
		return "", err
	}
	return out.Answer, nil
}

// Notes lists the notes of the signed in user, newest first. A non empty
// query is searched on the server.
func (c *Client) Notes(token, query string) ([]models.Note, error) {
	var out struct {
		errorBody
		Notes []models.Note `json:"notes"`
	}
	agent := c.http.Get(c.baseURL + "/api/v1/notes")
	if query != "" {
		agent.QueryString("q=" + url.QueryEscape(query))
	}
	if err := c.do(withToken(agent, token), &out); err != nil {
		return nil, err
	}
	return out.Notes, nil
}

func withToken(agent *fiber.Agent, token string) *fiber.Agent {
	if token == "" {
		return agent
	}
	return agent.Set(fiber.HeaderAuthorization, "Bearer "+token)
}

// do runs the request and decodes the body into out, which must embed
// errorBody.
func (c *Client) do(agent *fiber.Agent, out interface{ message() string }) error {
	if c.timeout > 0 {
		agent.Timeout(c.timeout)
	}

	code, _, errs := agent.Struct(out)
	if code >= fiber.StatusBadRequest || (code != 0 && out.message() != "") {
		return &APIError{Status: code, Message: out.message()}
	}
	if len(errs) > 0 {
		return fmt.Errorf("request: %w", errors.Join(errs...))
	}
	return nil
}

func (b *errorBody) message() string {
	if b.ErrorMessage == nil {
		return ""
	}
	return *b.ErrorMessage
}
