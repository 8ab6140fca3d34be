package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartentrance/internal/apiclient"
	"smartentrance/internal/models"
	"smartentrance/internal/utils/logger"
)

func init() {
	logger.SetOutput(io.Discard)
}

func newBackend(t *testing.T, mux *http.ServeMux) *apiclient.Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := apiclient.New(srv.URL+"/api", time.Second)
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestBuildingsListManaged(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/buildings", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []models.Building{{ID: 7, Name: "Blok A", Address: "Vitosha 1", Entrance: "A"}})
	})

	got, err := NewBuildingService(newBackend(t, mux)).ListManaged(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.Building{{ID: 7, Name: "Blok A", Address: "Vitosha 1", Entrance: "A"}}, got)
}

func TestListNullIsEmpty(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/buildings/7/notices", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("null"))
	})

	got, err := NewNoticeService(newBackend(t, mux)).ListByBuilding(context.Background(), 7)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCreateBuildingSendsFlattenedAddress(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/buildings", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&body)) {
			return
		}
		assert.Equal(t, "Blok A", body["name"])
		assert.Equal(t, "bul. Vitosha 1, Sofia", body["address"])
		assert.Equal(t, "Sofia", body["city"])
		writeJSON(w, http.StatusCreated, models.Building{ID: 9, Name: "Blok A", Address: "bul. Vitosha 1, Sofia"})
	})

	req := CreateBuildingRequest{
		Name: "Blok A",
		Address: PlaceAddress{
			FormattedAddress: "bul. Vitosha 1, Sofia",
			Components: []AddressComponent{
				{LongName: "1", Types: []string{"street_number"}},
				{LongName: "bul. Vitosha", Types: []string{"route"}},
				{LongName: "Sofia", Types: []string{"locality", "political"}},
			},
		},
	}
	b, err := NewBuildingService(newBackend(t, mux)).Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(9), b.ID)
}

func TestDuplicateBuildingKeepsStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/buildings", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusConflict, map[string]string{"message": "Building already exists"})
	})

	_, err := NewBuildingService(newBackend(t, mux)).Create(context.Background(), CreateBuildingRequest{Name: "x"})
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, apiclient.StatusOf(err))
	assert.Contains(t, apiclient.MessageOf(err), "already exists")
}

func TestUnitEndpoints(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/units/mine", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []models.Unit{{UnitID: 3, UnitNumber: 101, BuildingID: 7}})
	})
	mux.HandleFunc("GET /api/buildings/7/units", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []models.UnitDetails{{ID: 3, BuildingID: 7, UnitNumber: 101}})
	})
	mux.HandleFunc("PUT /api/units/3/fee", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]float64
		_ = json.NewDecoder(r.Body).Decode(&body)
		writeJSON(w, http.StatusOK, models.UnitDetails{ID: 3, MonthlyFee: body["monthlyFee"]})
	})

	svc := NewUnitService(newBackend(t, mux))
	ctx := context.Background()

	mine, err := svc.ListMine(ctx)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	all, err := svc.ListByBuilding(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	updated, err := svc.UpdateFee(ctx, 3, 25.5)
	require.NoError(t, err)
	assert.Equal(t, 25.5, updated.MonthlyFee)
}

func TestTransactionsByBuildingPeriod(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/buildings/7/transactions", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2026-09", r.URL.Query().Get("period"))
		writeJSON(w, http.StatusOK, []models.Transaction{{ID: 1, Kind: models.TransactionKindFee, Amount: 20}})
	})

	got, err := NewTransactionService(newBackend(t, mux)).ListByBuilding(context.Background(), 7, "2026-09")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestRecordPaymentRejectsUnknownMethod(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected backend call %s %s", r.Method, r.URL.Path)
	})

	_, err := NewTransactionService(newBackend(t, mux)).RecordPayment(context.Background(), RecordPaymentRequest{
		UnitID: 3, Amount: 10, Method: "crypto",
	})
	assert.Error(t, err)
}

func TestCreateCardIntent(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/payments/intent", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.CardIntent{ClientSecret: "pi_123_secret", Amount: 40, Currency: "eur"})
	})

	intent, err := NewTransactionService(newBackend(t, mux)).CreateCardIntent(context.Background(), CardIntentRequest{UnitID: 3, Amount: 40})
	require.NoError(t, err)
	assert.Equal(t, "pi_123_secret", intent.ClientSecret)
}

func TestPollVote(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/polls/5/votes", func(w http.ResponseWriter, r *http.Request) {
		var body VoteRequest
		_ = json.NewDecoder(r.Body).Decode(&body)
		assert.Equal(t, int64(2), body.OptionID)
		writeJSON(w, http.StatusOK, models.Poll{ID: 5, HasVoted: true})
	})

	poll, err := NewPollService(newBackend(t, mux)).Vote(context.Background(), 5, VoteRequest{OptionID: 2})
	require.NoError(t, err)
	assert.True(t, poll.HasVoted)
}

func TestInvitationEndpoints(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/units/3/invitations", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, models.Invitation{ID: 1, UnitID: 3, Email: "neighbour@example.com", Code: "ABCD"})
	})
	mux.HandleFunc("POST /api/invitations/accept", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Invalid invitation code"})
	})

	svc := NewInvitationService(newBackend(t, mux))
	inv, err := svc.Create(context.Background(), CreateInvitationRequest{UnitID: 3, Email: "neighbour@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "ABCD", inv.Code)

	_, err = svc.Accept(context.Background(), AcceptInvitationRequest{Code: "WXYZ"})
	assert.Equal(t, http.StatusNotFound, apiclient.StatusOf(err))
}

func TestAuthLoginAndMe(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		assert.NotContains(t, body, "rememberMe")
		writeJSON(w, http.StatusOK, models.User{ID: 1, Email: "ivan@example.com", Role: models.UserRoleManager})
	})
	mux.HandleFunc("GET /api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	svc := NewAuthService(newBackend(t, mux))
	user, err := svc.Login(context.Background(), LoginRequest{Email: "ivan@example.com", Password: "secret", RememberMe: true})
	require.NoError(t, err)
	assert.True(t, user.IsManager())

	_, err = svc.Me(context.Background())
	assert.ErrorIs(t, err, apiclient.ErrUnauthorized)
}

func TestFileServiceUploadAndDiscard(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/files/upload", func(w http.ResponseWriter, r *http.Request) {
		f, hdr, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		defer f.Close()
		assert.Equal(t, "minutes.pdf", hdr.Filename)
		writeJSON(w, http.StatusOK, map[string]string{"url": "https://files.example/minutes.pdf"})
	})
	mux.HandleFunc("DELETE /api/files", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "https://files.example/minutes.pdf", r.URL.Query().Get("url"))
		w.WriteHeader(http.StatusNoContent)
	})

	svc := NewFileService(newBackend(t, mux))
	u, err := svc.Upload(context.Background(), File{Name: "minutes.pdf", ContentType: "application/pdf", Content: []byte("%PDF")})
	require.NoError(t, err)
	assert.Equal(t, "https://files.example/minutes.pdf", u)

	assert.NoError(t, svc.Discard(context.Background(), u))
}

func TestFileServiceRequiresURL(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/files/upload", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{})
	})

	_, err := NewFileService(newBackend(t, mux)).Upload(context.Background(), File{Name: "a.txt"})
	assert.Error(t, err)
}

func TestNewDefaultsToBackendUploader(t *testing.T) {
	svc := New(newBackend(t, http.NewServeMux()), Storage{})
	assert.Same(t, svc.Files, svc.Documents.uploader)
	assert.NotNil(t, svc.Documents.ledger)
}
