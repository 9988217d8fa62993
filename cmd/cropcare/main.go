package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/cropcareapp/cropcare-backend/internal/clientsession"
	"github.com/cropcareapp/cropcare-backend/pkg/config"
	"github.com/cropcareapp/cropcare-backend/pkg/env"
	"github.com/cropcareapp/cropcare-backend/pkg/logger"
)

// The CLI is the session authority for a logged-in user: the token it stores
// locally decides whether a session is live, not any server-side record.
func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "cropcare"})

	_ = godotenv.Load()

	cmd := flag.String("cmd", "whoami", "command: register|login|whoami|timer|logout")
	apiURL := flag.String("api", env.Get("CROPCARE_API_URL", "http://localhost:8080"), "api base url")
	statePath := flag.String("state", defaultStatePath(), "session state database path")

	username := flag.String("username", "", "account username")
	password := flag.String("password", "", "account password")
	email := flag.String("email", "", "account email (for register)")

	flag.Parse()

	cfg, err := config.LoadClient()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}
	logg = logger.New(logger.Options{
		ServiceName: "cropcare",
		Level:       logger.ParseLevel(cfg.LogLevel),
	})

	if err := os.MkdirAll(filepath.Dir(*statePath), 0o700); err != nil {
		logg.Error(ctx, "failed to prepare state directory", err)
		os.Exit(1)
	}
	store, err := clientsession.OpenSQLite(*statePath)
	if err != nil {
		logg.Error(ctx, "failed to open session state", err)
		os.Exit(1)
	}
	authority := clientsession.NewAuthority(store, cfg.JWT)
	client := &apiClient{baseURL: *apiURL, http: &http.Client{Timeout: 15 * time.Second}}

	switch *cmd {
	case "register":
		err = runRegister(ctx, client, *username, *password, *email)
	case "login":
		err = runLogin(ctx, client, authority, *username, *password)
	case "whoami":
		err = runWhoami(ctx, authority)
	case "timer":
		err = runTimer(ctx, authority)
	case "logout":
		err = authority.Logout(ctx)
		if err == nil {
			fmt.Println("logged out")
		}
	default:
		fmt.Fprintln(os.Stderr, "unknown -cmd value:", *cmd)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func defaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "cropcare-state.db"
	}
	return filepath.Join(home, ".cropcare", "state.db")
}

type apiClient struct {
	baseURL string
	http    *http.Client
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// postJSON posts the payload and decodes the success envelope's data field
// into out.
func (c *apiClient) postJSON(ctx context.Context, path string, payload, out any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		var envelope errorEnvelope
		if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
			return fmt.Errorf("%s (%s)", envelope.Error.Message, envelope.Error.Code)
		}
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}

	var success struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &success); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	if out != nil {
		if err := json.Unmarshal(success.Data, out); err != nil {
			return fmt.Errorf("decoding response data: %w", err)
		}
	}
	return nil
}

func runRegister(ctx context.Context, client *apiClient, username, password, email string) error {
	if username == "" || password == "" || email == "" {
		return fmt.Errorf("register needs -username, -password and -email")
	}
	var result struct {
		Msg string `json:"msg"`
	}
	err := client.postJSON(ctx, "/api/register", map[string]string{
		"username": username,
		"password": password,
		"email":    email,
	}, &result)
	if err != nil {
		return err
	}
	fmt.Println(result.Msg)
	return nil
}

func runLogin(ctx context.Context, client *apiClient, authority *clientsession.Authority, username, password string) error {
	if username == "" || password == "" {
		return fmt.Errorf("login needs -username and -password")
	}
	var result struct {
		Msg       string `json:"msg"`
		Username  string `json:"username"`
		Token     string `json:"token"`
		LoginTime int64  `json:"loginTime"`
	}
	err := client.postJSON(ctx, "/api/login", map[string]string{
		"username": username,
		"password": password,
	}, &result)
	if err != nil {
		return err
	}
	if err := authority.SaveLogin(ctx, result.Token, result.Username, result.LoginTime); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}

	session, err := authority.Current(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%s as %s, session expires in %s\n", result.Msg, session.Username, formatRemaining(session.Remaining(time.Now())))
	return nil
}

func runWhoami(ctx context.Context, authority *clientsession.Authority) error {
	session, err := authority.Current(ctx)
	if err != nil {
		return err
	}
	if session.State != clientsession.Authenticated {
		fmt.Println("not logged in")
		return nil
	}
	fmt.Printf("%s (%s), session expires in %s\n", session.Username, session.Role, formatRemaining(session.Remaining(time.Now())))
	return nil
}

func runTimer(ctx context.Context, authority *clientsession.Authority) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	countdown, err := clientsession.StartCountdown(ctx, authority, func(remaining time.Duration) {
		if remaining <= 0 {
			fmt.Println("\rsession expired")
			return
		}
		fmt.Printf("\rsession expires in %s ", formatRemaining(remaining))
	})
	if err != nil {
		return err
	}
	defer countdown.Stop()

	select {
	case <-ctx.Done():
		fmt.Println()
	case <-countdown.Done():
	}
	return nil
}

func formatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
