package playground_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/BarberLink/BL-Backend/internal/db"
	"github.com/BarberLink/BL-Backend/internal/middleware"
	"github.com/BarberLink/BL-Backend/internal/playground"
	"github.com/go-chi/chi/v5"
)

// Test limits, mirrored by the env vars set in TestMain.
const (
	testGenerationLimit = 5
	testCooldownSeconds = 10
	testGeneratePerHour = 60
	testMaxImageBytes   = 1 << 20
	testSessionDuration = 30
	testProviderStub    = "stub"
)

var dbAvailable bool

var testServer *httptest.Server

func TestMain(m *testing.M) {
	_ = godotenv.Load("../../.env.local")

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		// No database available — skip all integration tests gracefully.
		os.Exit(m.Run())
	}

	mediaRoot, err := os.MkdirTemp("", "playground-media-*")
	if err != nil {
		fmt.Fprintf(os.Stderr, "temp media root: %v\n", err)
		os.Exit(1)
	}
	defer os.RemoveAll(mediaRoot)

	os.Setenv("PLAYGROUND_SIGNING_SECRET", "integration-test-secret")
	os.Setenv("PLAYGROUND_SESSION_COOKIE_SECURE", "0")
	os.Setenv("PLAYGROUND_SESSION_DURATION_MINUTES", fmt.Sprint(testSessionDuration))
	os.Setenv("PLAYGROUND_SESSION_GENERATION_LIMIT", fmt.Sprint(testGenerationLimit))
	os.Setenv("PLAYGROUND_MIN_GENERATE_INTERVAL_SECONDS", fmt.Sprint(testCooldownSeconds))
	os.Setenv("PLAYGROUND_GENERATE_MAX_PER_IP_PER_HOUR", fmt.Sprint(testGeneratePerHour))
	os.Setenv("PLAYGROUND_MAX_IMAGE_SIZE_BYTES", fmt.Sprint(testMaxImageBytes))
	os.Setenv("PLAYGROUND_PROVIDER", testProviderStub)
	os.Setenv("MEDIA_ROOT", mediaRoot)

	db.Connect()
	dbAvailable = true

	playground.Init()

	r := chi.NewRouter()
	r.Use(middleware.CORSMiddleware)
	r.Mount("/playground", playground.SetupRoutes())

	testServer = httptest.NewServer(r)
	defer testServer.Close()

	os.Exit(m.Run())
}

func requireDB(t *testing.T) {
	t.Helper()
	if !dbAvailable {
		t.Skip("skipping integration test (requires DATABASE_URL)")
	}
}

// createTestSession inserts an active session with a stored selfie and
// registers cleanup for the rows and files it produced.
func createTestSession(t *testing.T) *playground.Session {
	t.Helper()
	requireDB(t)

	selfiePath := fmt.Sprintf("selfies/%s.jpg", uuid.New().String())
	abs := os.Getenv("MEDIA_ROOT") + "/" + selfiePath
	if err := os.MkdirAll(os.Getenv("MEDIA_ROOT")+"/selfies", 0o755); err != nil {
		t.Fatalf("media dir: %v", err)
	}
	if err := os.WriteFile(abs, []byte("selfie-bytes"), 0o644); err != nil {
		t.Fatalf("write selfie: %v", err)
	}

	now := time.Now()
	session := playground.Session{
		Token:            strings.ReplaceAll(uuid.New().String()+uuid.New().String(), "-", ""),
		ExpiresAt:        now.Add(30 * time.Minute),
		SelfiePath:       selfiePath,
		SelfieUploadedAt: &now,
	}
	if err := db.DB.Create(&session).Error; err != nil {
		t.Fatalf("create session: %v", err)
	}

	t.Cleanup(func() {
		db.DB.Where("session_id = ?", session.ID).Delete(&playground.Generation{})
		db.DB.Where("session_id = ?", session.ID).Delete(&playground.RateLimitEvent{})
		db.DB.Delete(&playground.Session{}, "id = ?", session.ID)
	})

	return &session
}

// createTestCatalog inserts one active style, beard style, and color pair.
func createTestCatalog(t *testing.T) (style playground.Style, beard playground.BeardStyle, hairColor, beardColor playground.ColorOption) {
	t.Helper()
	requireDB(t)

	style = playground.Style{
		Name:      "Test Fade " + uuid.New().String()[:8],
		ImagePath: "styles/test-fade.jpg",
		IsActive:  true,
	}
	if err := db.DB.Create(&style).Error; err != nil {
		t.Fatalf("create style: %v", err)
	}

	beard = playground.BeardStyle{
		Name:      "Test Beard " + uuid.New().String()[:8],
		ImagePath: "beards/test-beard.jpg",
		IsActive:  true,
	}
	if err := db.DB.Create(&beard).Error; err != nil {
		t.Fatalf("create beard style: %v", err)
	}

	hairColor = playground.ColorOption{Name: "Test Black " + uuid.New().String()[:8], Scope: playground.ColorScopeHair, IsActive: true}
	if err := db.DB.Create(&hairColor).Error; err != nil {
		t.Fatalf("create hair color: %v", err)
	}
	beardColor = playground.ColorOption{Name: "Test Brown " + uuid.New().String()[:8], Scope: playground.ColorScopeBoth, IsActive: true}
	if err := db.DB.Create(&beardColor).Error; err != nil {
		t.Fatalf("create beard color: %v", err)
	}

	t.Cleanup(func() {
		db.DB.Delete(&playground.Style{}, "id = ?", style.ID)
		db.DB.Delete(&playground.BeardStyle{}, "id = ?", beard.ID)
		db.DB.Delete(&playground.ColorOption{}, "id IN ?", []uint{hairColor.ID, beardColor.ID})
	})

	// Reference images must exist for the stub-free providers; the stub only
	// reads the selfie, so placeholder paths are enough here.
	return style, beard, hairColor, beardColor
}

func curatedInput(style playground.Style) playground.SelectionInput {
	return playground.SelectionInput{
		StyleIDValue:    fmt.Sprint(style.ID),
		HairColorValue:  "none",
		HasHairColor:    true,
		BeardStyleValue: "none",
		HasBeardStyle:   true,
		BeardColorValue: "none",
		HasBeardColor:   true,
	}
}

func newClientWithJar(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func TestStartSessionSetsCookieAndRedirects(t *testing.T) {
	requireDB(t)
	client := newClientWithJar(t)

	resp, err := client.Get(testServer.URL + "/playground/start")
	if err != nil {
		t.Fatalf("start request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected 302, got %d", resp.StatusCode)
	}
	if location := resp.Header.Get("Location"); location != "/playground/" {
		t.Errorf("expected redirect home, got %q", location)
	}
	if resp.Header.Get("Cache-Control") != "no-store" {
		t.Error("start response must not be cacheable")
	}

	found := false
	for _, cookie := range resp.Cookies() {
		if cookie.Name == "playground_session" && cookie.Value != "" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a playground_session cookie")
	}

	// The cookie now authenticates the home endpoint.
	homeResp, err := client.Get(testServer.URL + "/playground/")
	if err != nil {
		t.Fatalf("home request: %v", err)
	}
	defer homeResp.Body.Close()
	if homeResp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(homeResp.Body)
		t.Fatalf("expected 200 home, got %d: %s", homeResp.StatusCode, body)
	}

	var home map[string]interface{}
	if err := json.NewDecoder(homeResp.Body).Decode(&home); err != nil {
		t.Fatalf("decode home: %v", err)
	}
	if ok, _ := home["ok"].(bool); !ok {
		t.Errorf("expected ok:true, got %v", home)
	}
}

func TestHomeWithoutSession(t *testing.T) {
	requireDB(t)

	resp, err := http.Get(testServer.URL + "/playground/")
	if err != nil {
		t.Fatalf("home request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 without a session, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Cache-Control") != "no-store" {
		t.Error("expected Cache-Control: no-store")
	}
}

func TestForgedCookieRejected(t *testing.T) {
	requireDB(t)

	req, _ := http.NewRequest("GET", testServer.URL+"/playground/api/styles", nil)
	req.AddCookie(&http.Cookie{Name: "playground_session", Value: "forged.jwt.value"})

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for a forged cookie, got %d", resp.StatusCode)
	}
}

func TestSelfieUploadAndGenerateEndToEnd(t *testing.T) {
	requireDB(t)
	style, _, _, _ := createTestCatalog(t)
	client := newClientWithJar(t)

	if resp, err := client.Get(testServer.URL + "/playground/start"); err != nil {
		t.Fatalf("start: %v", err)
	} else {
		resp.Body.Close()
	}

	// Upload a selfie.
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, _ := writer.CreateFormFile("image", "selfie.jpg")
	part.Write([]byte("selfie-image-bytes"))
	writer.Close()

	req, _ := http.NewRequest("POST", testServer.URL+"/playground/api/selfie", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("selfie upload: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected 200 selfie upload, got %d: %s", resp.StatusCode, raw)
	}

	// Generate with the curated style; all selections explicit.
	generate := func() map[string]interface{} {
		var form bytes.Buffer
		formWriter := multipart.NewWriter(&form)
		formWriter.WriteField("style_id", fmt.Sprint(style.ID))
		formWriter.WriteField("hair_color_option_id", "none")
		formWriter.WriteField("beard_style_id", "none")
		formWriter.WriteField("beard_color_option_id", "none")
		formWriter.Close()

		genReq, _ := http.NewRequest("POST", testServer.URL+"/playground/api/generate", &form)
		genReq.Header.Set("Content-Type", formWriter.FormDataContentType())
		genResp, err := client.Do(genReq)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		defer genResp.Body.Close()
		if genResp.StatusCode != http.StatusOK {
			raw, _ := io.ReadAll(genResp.Body)
			t.Fatalf("expected 200 generate, got %d: %s", genResp.StatusCode, raw)
		}
		var decoded map[string]interface{}
		if err := json.NewDecoder(genResp.Body).Decode(&decoded); err != nil {
			t.Fatalf("decode generate response: %v", err)
		}
		return decoded
	}

	first := generate()
	generation, _ := first["generation"].(map[string]interface{})
	if generation == nil {
		t.Fatalf("missing generation payload: %v", first)
	}
	if status, _ := generation["status"].(string); status != "succeeded" {
		t.Errorf("expected succeeded status, got %q", status)
	}
	if resultURL, _ := generation["result_url"].(string); resultURL == "" {
		t.Error("expected a result URL")
	}
	if _, reused := first["reused"]; reused {
		t.Error("first generation must not be a cache hit")
	}

	// Identical resubmission reuses the stored result and charges nothing.
	second := generate()
	if reused, _ := second["reused"].(bool); !reused {
		t.Errorf("identical submission should reuse the result: %v", second)
	}
	secondGeneration, _ := second["generation"].(map[string]interface{})
	if secondGeneration["id"] != generation["id"] {
		t.Errorf("reuse must return the original generation, got %v vs %v",
			secondGeneration["id"], generation["id"])
	}
}

func TestGenerateRequiresSelections(t *testing.T) {
	requireDB(t)
	client := newClientWithJar(t)

	if resp, err := client.Get(testServer.URL + "/playground/start"); err != nil {
		t.Fatalf("start: %v", err)
	} else {
		resp.Body.Close()
	}

	// Upload a selfie so validation reaches the selection checks.
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, _ := writer.CreateFormFile("image", "selfie.jpg")
	part.Write([]byte("selfie-image-bytes"))
	writer.Close()
	req, _ := http.NewRequest("POST", testServer.URL+"/playground/api/selfie", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if resp, err := client.Do(req); err != nil {
		t.Fatalf("selfie upload: %v", err)
	} else {
		resp.Body.Close()
	}

	// Omitting hair_color_option_id entirely is a 400; "none" would be valid.
	var form bytes.Buffer
	formWriter := multipart.NewWriter(&form)
	formWriter.WriteField("style_id", "1")
	formWriter.WriteField("beard_style_id", "none")
	formWriter.WriteField("beard_color_option_id", "none")
	formWriter.Close()

	genReq, _ := http.NewRequest("POST", testServer.URL+"/playground/api/generate", &form)
	genReq.Header.Set("Content-Type", formWriter.FormDataContentType())
	genResp, err := client.Do(genReq)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	defer genResp.Body.Close()

	if genResp.StatusCode != http.StatusBadRequest {
		raw, _ := io.ReadAll(genResp.Body)
		t.Fatalf("expected 400 for omitted selection, got %d: %s", genResp.StatusCode, raw)
	}
	var decoded map[string]interface{}
	json.NewDecoder(genResp.Body).Decode(&decoded)
	if msg, _ := decoded["error"].(string); msg != "Choose a hair color option first." {
		t.Errorf("unexpected error message %q", msg)
	}

	// A blank field is treated the same as omitting it.
	var blankForm bytes.Buffer
	blankWriter := multipart.NewWriter(&blankForm)
	blankWriter.WriteField("style_id", "1")
	blankWriter.WriteField("beard_style_id", "none")
	blankWriter.WriteField("beard_color_option_id", "none")
	blankWriter.WriteField("hair_color_option_id", "")
	blankWriter.Close()

	blankReq, _ := http.NewRequest("POST", testServer.URL+"/playground/api/generate", &blankForm)
	blankReq.Header.Set("Content-Type", blankWriter.FormDataContentType())
	blankResp, err := client.Do(blankReq)
	if err != nil {
		t.Fatalf("generate with blank field: %v", err)
	}
	defer blankResp.Body.Close()

	if blankResp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank selection, got %d", blankResp.StatusCode)
	}
	var blankDecoded map[string]interface{}
	json.NewDecoder(blankResp.Body).Decode(&blankDecoded)
	if msg, _ := blankDecoded["error"].(string); msg != "Choose a hair color option first." {
		t.Errorf("blank field should read as omission, got error %q", msg)
	}
}

func TestSubmitGenerationQuota(t *testing.T) {
	requireDB(t)
	style, _, _, _ := createTestCatalog(t)
	session := createTestSession(t)

	db.DB.Model(session).Update("generation_count", testGenerationLimit)
	session.GenerationCount = testGenerationLimit

	_, reqErr := playground.SubmitGeneration(context.Background(), session, "198.51.100.10", "test-agent", curatedInput(style))
	if reqErr == nil {
		t.Fatal("expected a quota error")
	}
	if reqErr.Status != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", reqErr.Status)
	}
	if reqErr.RetryAfter != 0 {
		t.Errorf("quota exhaustion has no retry window, got %d", reqErr.RetryAfter)
	}
}

func TestSubmitGenerationCooldown(t *testing.T) {
	requireDB(t)
	style, _, _, _ := createTestCatalog(t)
	session := createTestSession(t)

	lastGen := time.Now().Add(-2 * time.Second)
	db.DB.Model(session).Updates(map[string]interface{}{
		"generation_count":   1,
		"last_generation_at": lastGen,
	})
	session.GenerationCount = 1
	session.LastGenerationAt = &lastGen

	_, reqErr := playground.SubmitGeneration(context.Background(), session, "198.51.100.11", "test-agent", curatedInput(style))
	if reqErr == nil {
		t.Fatal("expected a cooldown error")
	}
	if reqErr.Status != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", reqErr.Status)
	}
	if reqErr.RetryAfter < 1 || reqErr.RetryAfter > testCooldownSeconds {
		t.Errorf("unexpected Retry-After %d", reqErr.RetryAfter)
	}
}

func TestSubmitGenerationIPRateLimit(t *testing.T) {
	requireDB(t)
	style, _, _, _ := createTestCatalog(t)
	session := createTestSession(t)

	ip := "198.51.100.12"
	for i := 0; i < testGeneratePerHour; i++ {
		playground.RecordEvent(playground.ActionGenerate, ip, session)
	}
	t.Cleanup(func() {
		db.DB.Where("ip_address = ?", ip).Delete(&playground.RateLimitEvent{})
	})

	_, reqErr := playground.SubmitGeneration(context.Background(), session, ip, "test-agent", curatedInput(style))
	if reqErr == nil {
		t.Fatal("expected an IP rate limit error")
	}
	if reqErr.Status != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", reqErr.Status)
	}
}

func TestSubmitGenerationWithoutSelfie(t *testing.T) {
	requireDB(t)
	style, _, _, _ := createTestCatalog(t)
	session := createTestSession(t)

	db.DB.Model(session).Update("selfie_path", "")
	session.SelfiePath = ""

	_, reqErr := playground.SubmitGeneration(context.Background(), session, "198.51.100.13", "test-agent", curatedInput(style))
	if reqErr == nil || reqErr.Status != http.StatusBadRequest {
		t.Fatalf("expected 400 without a selfie, got %+v", reqErr)
	}
}

func TestSubmitGenerationInactiveStyle(t *testing.T) {
	requireDB(t)
	style, _, _, _ := createTestCatalog(t)
	session := createTestSession(t)

	db.DB.Model(&style).Update("is_active", false)

	_, reqErr := playground.SubmitGeneration(context.Background(), session, "198.51.100.14", "test-agent", curatedInput(style))
	if reqErr == nil || reqErr.Status != http.StatusNotFound {
		t.Fatalf("expected 404 for an inactive style, got %+v", reqErr)
	}
}

func TestSelfieChangeInvalidatesReuse(t *testing.T) {
	requireDB(t)
	style, _, _, _ := createTestCatalog(t)
	session := createTestSession(t)

	first, reqErr := playground.SubmitGeneration(context.Background(), session, "198.51.100.15", "test-agent", curatedInput(style))
	if reqErr != nil {
		t.Fatalf("first submission failed: %+v", reqErr)
	}
	if first.Reused {
		t.Fatal("first submission must not reuse")
	}

	// Same selection again: cache hit.
	second, reqErr := playground.SubmitGeneration(context.Background(), session, "198.51.100.15", "test-agent", curatedInput(style))
	if reqErr != nil {
		t.Fatalf("second submission failed: %+v", reqErr)
	}
	if !second.Reused {
		t.Fatal("identical submission should be a cache hit")
	}

	// A new selfie invalidates the cache key.
	newSelfie := fmt.Sprintf("selfies/%s.jpg", uuid.New().String())
	abs := os.Getenv("MEDIA_ROOT") + "/" + newSelfie
	if err := os.WriteFile(abs, []byte("new-selfie-bytes"), 0o644); err != nil {
		t.Fatalf("write new selfie: %v", err)
	}
	db.DB.Model(session).Update("selfie_path", newSelfie)
	session.SelfiePath = newSelfie

	// Cooldown would reject an immediate resubmission; clear it.
	db.DB.Model(session).Update("last_generation_at", time.Now().Add(-time.Hour))
	past := time.Now().Add(-time.Hour)
	session.LastGenerationAt = &past

	third, reqErr := playground.SubmitGeneration(context.Background(), session, "198.51.100.15", "test-agent", curatedInput(style))
	if reqErr != nil {
		t.Fatalf("third submission failed: %+v", reqErr)
	}
	if third.Reused {
		t.Error("a changed selfie must trigger a fresh generation")
	}
	if third.Generation.ID == first.Generation.ID {
		t.Error("expected a new generation record after the selfie change")
	}
}

func TestOneStylePerSessionConflict(t *testing.T) {
	requireDB(t)
	style, _, _, _ := createTestCatalog(t)
	session := createTestSession(t)

	// A prior success whose stored image was purged cannot be reused, and the
	// one-style policy blocks re-rendering it.
	purged := playground.Generation{
		SessionID:  session.ID,
		StyleID:    &style.ID,
		SelfiePath: session.SelfiePath,
		Provider:   "stub",
		Status:     playground.StatusSucceeded,
		ResultPath: "",
	}
	if err := db.DB.Create(&purged).Error; err != nil {
		t.Fatalf("create purged generation: %v", err)
	}

	_, reqErr := playground.SubmitGeneration(context.Background(), session, "198.51.100.16", "test-agent", curatedInput(style))
	if reqErr == nil || reqErr.Status != http.StatusConflict {
		t.Fatalf("expected 409 conflict, got %+v", reqErr)
	}
}

func TestUncredentialedProviderRecordsFailure(t *testing.T) {
	requireDB(t)
	style, _, _, _ := createTestCatalog(t)
	session := createTestSession(t)

	// Point the playground at a provider with no credentials, then restore.
	os.Setenv("PLAYGROUND_PROVIDER", "nanobanana")
	os.Unsetenv("PLAYGROUND_NANOBANANA_API_KEY")
	playground.Init()
	t.Cleanup(func() {
		os.Setenv("PLAYGROUND_PROVIDER", testProviderStub)
		playground.Init()
	})

	result, reqErr := playground.SubmitGeneration(context.Background(), session, "198.51.100.17", "test-agent", curatedInput(style))
	if reqErr == nil {
		t.Fatal("expected a provider failure")
	}
	if reqErr.Status != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", reqErr.Status)
	}
	if reqErr.Message != "Generation failed. Please retry in a moment." {
		t.Errorf("client message must stay generic, got %q", reqErr.Message)
	}
	if result == nil || result.Generation == nil {
		t.Fatal("failed submissions must still return the persisted record")
	}

	var stored playground.Generation
	if err := db.DB.First(&stored, "id = ?", result.Generation.ID).Error; err != nil {
		t.Fatalf("load generation: %v", err)
	}
	if stored.Status != playground.StatusFailed {
		t.Errorf("expected failed status persisted, got %q", stored.Status)
	}
	if stored.ErrorMessage == "" {
		t.Error("expected the provider error recorded on the row")
	}
}
