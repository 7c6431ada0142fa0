// Package integration provides end-to-end tests for the hirez client
// against the fake API server, covering the full session lifecycle.
package integration

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alexbotov/hirez/pkg/hirez"
	"github.com/alexbotov/hirez/pkg/hireztest"
)

const (
	devID   = "1004"
	authKey = "23DF3C7E9BD14D84BF892AD206B6755C"
)

type fixture struct {
	server *hireztest.Server
	client *hirez.Client
}

func newFixture(t *testing.T, configure func(*hirez.ClientConfig)) *fixture {
	t.Helper()

	server := hireztest.NewServer(devID, authKey)

	cfg := &hirez.ClientConfig{
		BaseURL:    server.URL(),
		DevID:      devID,
		AuthKey:    authKey,
		Timeout:    5 * time.Second,
		RetryCount: 1,
	}
	if configure != nil {
		configure(cfg)
	}

	client, err := hirez.NewClient(cfg)
	if err != nil {
		server.Close()
		t.Fatalf("Failed to create client: %v", err)
	}

	t.Cleanup(func() {
		client.Close()
		server.Close()
	})
	return &fixture{server: server, client: client}
}

func TestSessionReuse(t *testing.T) {
	f := newFixture(t, nil)

	for i := 0; i < 5; i++ {
		if _, err := f.client.Call(context.Background(), "getgods", "1"); err != nil {
			t.Fatalf("Call %d failed: %v", i, err)
		}
	}

	if got := f.server.CreatedSessions(); got != 1 {
		t.Errorf("Five sequential calls must share one session, created %d", got)
	}
	if got := len(f.server.Calls()); got != 5 {
		t.Errorf("Expected 5 method calls served, got %d", got)
	}
}

func TestExpiryTriggersRenewal(t *testing.T) {
	f := newFixture(t, func(cfg *hirez.ClientConfig) {
		cfg.SessionTTL = 40 * time.Millisecond
	})

	if _, err := f.client.Call(context.Background(), "getgods", "1"); err != nil {
		t.Fatalf("First call failed: %v", err)
	}

	time.Sleep(80 * time.Millisecond)

	if _, err := f.client.Call(context.Background(), "getgods", "1"); err != nil {
		t.Fatalf("Post-expiry call failed: %v", err)
	}

	if got := f.server.CreatedSessions(); got != 2 {
		t.Errorf("Expected exactly one renewal, total sessions %d", got)
	}
}

func TestServerSideExpiryTriggersRenewal(t *testing.T) {
	f := newFixture(t, nil)

	if _, err := f.client.Call(context.Background(), "getgods", "1"); err != nil {
		t.Fatalf("First call failed: %v", err)
	}

	// Server drops the session long before the client's local window ends.
	f.server.ExpireSessions()

	raw, err := f.client.Call(context.Background(), "getgods", "1")
	if err != nil {
		t.Fatalf("Post-rejection call failed: %v", err)
	}

	var echo struct {
		RetMsg *string `json:"ret_msg"`
	}
	if err := json.Unmarshal(raw, &echo); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if echo.RetMsg != nil {
		t.Errorf("Expected a successful response after renewal, got ret_msg %q", *echo.RetMsg)
	}
	if got := f.server.CreatedSessions(); got != 2 {
		t.Errorf("Expected exactly one renewal, total sessions %d", got)
	}
}

func TestConcurrentCallsSingleFlight(t *testing.T) {
	f := newFixture(t, nil)

	const callers = 30
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.client.Call(context.Background(), "getgods", "1")
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("Caller %d failed: %v", i, err)
		}
	}
	if got := f.server.CreatedSessions(); got != 1 {
		t.Errorf("%d concurrent calls must produce exactly 1 session, got %d", callers, got)
	}
}

func TestAsyncCallsShareSession(t *testing.T) {
	f := newFixture(t, nil)

	const callers = 20
	futures := make([]*hirez.CallFuture, callers)
	for i := 0; i < callers; i++ {
		futures[i] = f.client.CallAsync(context.Background(), "getplayer", "Weak3n")
	}
	for i, future := range futures {
		if _, err := future.Await(); err != nil {
			t.Fatalf("Future %d failed: %v", i, err)
		}
	}

	if got := f.server.CreatedSessions(); got != 1 {
		t.Errorf("Expected 1 session across %d futures, got %d", callers, got)
	}
}

func TestCreationFailureThenRecovery(t *testing.T) {
	f := newFixture(t, nil)
	f.server.FailCreations(true)

	_, err := f.client.Call(context.Background(), "getgods", "1")
	if !errors.Is(err, hirez.ErrSessionCreation) {
		t.Fatalf("Expected ErrSessionCreation, got %v", err)
	}
	if got := f.server.CreatedSessions(); got != 0 {
		t.Fatalf("Expected no session after failed creation, got %d", got)
	}

	f.server.FailCreations(false)

	if _, err := f.client.Call(context.Background(), "getgods", "1"); err != nil {
		t.Fatalf("Expected recovery, got %v", err)
	}
	if got := f.server.CreatedSessions(); got != 1 {
		t.Errorf("Expected exactly 1 session after recovery, got %d", got)
	}
}

func TestTypedCall(t *testing.T) {
	f := newFixture(t, nil)
	f.server.SetResponse("getgods", `[{"Name":"Anubis","godId":1678},{"Name":"Ymir","godId":1670}]`)

	type god struct {
		Name  string `json:"Name"`
		GodID int    `json:"godId"`
	}
	gods, err := hirez.Do[[]god](context.Background(), f.client, "getgods", "1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(gods) != 2 || gods[1].Name != "Ymir" {
		t.Errorf("Unexpected decode: %+v", gods)
	}
}

func TestPing(t *testing.T) {
	f := newFixture(t, nil)

	out, err := f.client.Ping(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if out == "" {
		t.Error("Expected a ping body")
	}
	if got := f.server.CreatedSessions(); got != 0 {
		t.Errorf("Ping must not create sessions, got %d", got)
	}
}

func TestSharedStoreAcrossClients(t *testing.T) {
	server := hireztest.NewServer(devID, authKey)
	defer server.Close()

	// Two clients sharing one store model two workers sharing a session.
	store := hirez.NewMemoryStore()
	newClient := func() *hirez.Client {
		c, err := hirez.NewClient(&hirez.ClientConfig{
			BaseURL: server.URL(),
			DevID:   devID,
			AuthKey: authKey,
			Store:   store,
		})
		if err != nil {
			t.Fatalf("Failed to create client: %v", err)
		}
		return c
	}
	a := newClient()
	defer a.Close()
	b := newClient()
	defer b.Close()

	if _, err := a.Call(context.Background(), "getgods", "1"); err != nil {
		t.Fatalf("Client a failed: %v", err)
	}
	if _, err := b.Call(context.Background(), "getgods", "1"); err != nil {
		t.Fatalf("Client b failed: %v", err)
	}

	if got := server.CreatedSessions(); got != 1 {
		t.Errorf("Clients sharing a store must share a session, created %d", got)
	}
}
