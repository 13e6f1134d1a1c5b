package dsc

import (
	"context"
	"crypto/elliptic"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/klog/v2"
	"k8s.io/klog/v2/ktesting"

	_ "k8s.io/klog/v2/ktesting/init"
)

// keyDirectoryResponse wraps an eu_keys JSON object the way the key directory
// endpoint does.
func keyDirectoryResponse(t *testing.T, euKeys string) string {
	t.Helper()

	payload := base64.StdEncoding.EncodeToString([]byte(`{"eu_keys":` + euKeys + `}`))
	body, err := json.Marshal(map[string]string{"payload": payload})
	require.NoError(t, err)
	return string(body)
}

func mockKeyDirectoryServer(t *testing.T, statusCode int, response string) *httptest.Server {
	t.Helper()

	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Contains(t, r.Header.Get("User-Agent"), "dsc-keys/")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		_, err := w.Write([]byte(response))
		require.NoError(t, err)
	}))

	t.Cleanup(server.Close)

	return server
}

func testClient(t *testing.T, statusCode int, response string) *Client {
	t.Helper()

	server := mockKeyDirectoryServer(t, statusCode, response)
	return NewClient(server.Client(), server.URL)
}

func testContext(t *testing.T) context.Context {
	logger := ktesting.NewLogger(t, ktesting.DefaultConfig)
	return klog.NewContext(t.Context(), logger)
}

func TestClient_FetchVerificationKeys(t *testing.T) {
	ecPK := subjectPK(t, &generateECKey(t, elliptic.P256()).PublicKey)
	ecPK2 := subjectPK(t, &generateECKey(t, elliptic.P256()).PublicKey)
	rsaPK := subjectPK(t, &generateRSAKey(t, 2048).PublicKey)
	smallRSAPK := subjectPK(t, &generateRSAKey(t, 1024).PublicKey)

	t.Run("single ES256 key", func(t *testing.T) {
		client := testClient(t, http.StatusOK, keyDirectoryResponse(t, `{"a2lkMQ==": [{"subjectPk": "`+ecPK+`"}]}`))

		keys, err := client.FetchVerificationKeys(testContext(t))
		require.NoError(t, err)

		require.Len(t, keys, 1)
		assert.Equal(t, KeyID("kid1"), keys[0].KeyID)
		assert.Equal(t, AlgorithmES256, keys[0].Algorithm)
	})

	t.Run("single PS256 key", func(t *testing.T) {
		client := testClient(t, http.StatusOK, keyDirectoryResponse(t, `{"a2lkMQ==": [{"subjectPk": "`+rsaPK+`"}]}`))

		keys, err := client.FetchVerificationKeys(testContext(t))
		require.NoError(t, err)

		require.Len(t, keys, 1)
		assert.Equal(t, KeyID("kid1"), keys[0].KeyID)
		assert.Equal(t, AlgorithmPS256, keys[0].Algorithm)
	})

	t.Run("preserves document order", func(t *testing.T) {
		euKeys := `{
			"a2lkMw==": [{"subjectPk": "` + rsaPK + `"}],
			"a2lkMQ==": [{"subjectPk": "` + ecPK + `"}, {"subjectPk": "` + ecPK2 + `", "keyUsage": ["t", "v"]}],
			"a2lkMg==": [{"subjectPk": "` + ecPK + `"}]
		}`
		client := testClient(t, http.StatusOK, keyDirectoryResponse(t, euKeys))

		keys, err := client.FetchVerificationKeys(testContext(t))
		require.NoError(t, err)

		var got []string
		for _, key := range keys {
			got = append(got, string(key.KeyID)+"/"+string(key.Algorithm))
		}
		assert.Equal(t, []string{"kid3/PS256", "kid1/ES256", "kid1/ES256", "kid2/ES256"}, got)

		// certificates within a kid keep their order too
		assert.NotEqual(t, keys[1].Key, keys[2].Key)
	})

	t.Run("is deterministic", func(t *testing.T) {
		euKeys := `{"a2lkMg==": [{"subjectPk": "` + ecPK + `"}], "a2lkMQ==": [{"subjectPk": "` + rsaPK + `"}]}`
		client := testClient(t, http.StatusOK, keyDirectoryResponse(t, euKeys))

		first, err := client.FetchVerificationKeys(testContext(t))
		require.NoError(t, err)
		second, err := client.FetchVerificationKeys(testContext(t))
		require.NoError(t, err)

		require.Len(t, second, len(first))
		for i := range first {
			assert.Equal(t, first[i].KeyID, second[i].KeyID)
			assert.Equal(t, first[i].Algorithm, second[i].Algorithm)
			assert.Equal(t, first[i].Key, second[i].Key)
		}
	})

	t.Run("does not deduplicate", func(t *testing.T) {
		euKeys := `{"a2lkMQ==": [{"subjectPk": "` + ecPK + `"}, {"subjectPk": "` + ecPK + `"}]}`
		client := testClient(t, http.StatusOK, keyDirectoryResponse(t, euKeys))

		keys, err := client.FetchVerificationKeys(testContext(t))
		require.NoError(t, err)
		assert.Len(t, keys, 2)
	})

	t.Run("empty eu_keys", func(t *testing.T) {
		client := testClient(t, http.StatusOK, keyDirectoryResponse(t, `{}`))

		keys, err := client.FetchVerificationKeys(testContext(t))
		require.NoError(t, err)
		assert.Empty(t, keys)
	})

	t.Run("kid without certificates", func(t *testing.T) {
		client := testClient(t, http.StatusOK, keyDirectoryResponse(t, `{"a2lkMQ==": []}`))

		keys, err := client.FetchVerificationKeys(testContext(t))
		require.NoError(t, err)
		assert.Empty(t, keys)
	})

	t.Run("skips keys that parse under no algorithm", func(t *testing.T) {
		euKeys := `{
			"a2lkMQ==": [{"subjectPk": "` + smallRSAPK + `"}, {"subjectPk": "Z2FyYmFnZQ=="}],
			"a2lkMg==": [{"subjectPk": "not base64"}]
		}`
		client := testClient(t, http.StatusOK, keyDirectoryResponse(t, euKeys))

		keys, err := client.FetchVerificationKeys(testContext(t))
		require.NoError(t, err)
		assert.Empty(t, keys)
	})

	t.Run("error on non-2xx status", func(t *testing.T) {
		client := testClient(t, http.StatusInternalServerError, "")

		_, err := client.FetchVerificationKeys(testContext(t))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unexpected status code 500")
	})

	t.Run("error on not found", func(t *testing.T) {
		client := testClient(t, http.StatusNotFound, `{"error": "not found"}`)

		_, err := client.FetchVerificationKeys(testContext(t))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unexpected status code 404")
	})

	t.Run("error on invalid JSON", func(t *testing.T) {
		client := testClient(t, http.StatusOK, "invalid json")

		_, err := client.FetchVerificationKeys(testContext(t))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse key directory response")
	})

	t.Run("error on missing payload", func(t *testing.T) {
		client := testClient(t, http.StatusOK, `{"signature": "abc"}`)

		_, err := client.FetchVerificationKeys(testContext(t))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no payload field")
	})

	t.Run("error on invalid base64 payload", func(t *testing.T) {
		client := testClient(t, http.StatusOK, `{"payload": "not base64!"}`)

		_, err := client.FetchVerificationKeys(testContext(t))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to decode key directory payload")
	})

	t.Run("error on invalid JSON inside payload", func(t *testing.T) {
		payload := base64.StdEncoding.EncodeToString([]byte("{not json"))
		client := testClient(t, http.StatusOK, `{"payload": "`+payload+`"}`)

		_, err := client.FetchVerificationKeys(testContext(t))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse key directory payload")
	})

	t.Run("error on missing eu_keys", func(t *testing.T) {
		payload := base64.StdEncoding.EncodeToString([]byte(`{"nl_keys": {}}`))
		client := testClient(t, http.StatusOK, `{"payload": "`+payload+`"}`)

		_, err := client.FetchVerificationKeys(testContext(t))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no eu_keys field")
	})

	t.Run("error on missing subjectPk", func(t *testing.T) {
		client := testClient(t, http.StatusOK, keyDirectoryResponse(t, `{"a2lkMQ==": [{"keyUsage": ["v"]}]}`))

		_, err := client.FetchVerificationKeys(testContext(t))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing the subjectPk field")
	})

	t.Run("error on invalid key identifier", func(t *testing.T) {
		client := testClient(t, http.StatusOK, keyDirectoryResponse(t, `{"not base64!": [{"subjectPk": "`+ecPK+`"}]}`))

		_, err := client.FetchVerificationKeys(testContext(t))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to decode key identifier")
	})

	t.Run("context cancellation", func(t *testing.T) {
		server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// This handler will never respond
			<-r.Context().Done()
		}))
		defer server.Close()

		client := NewClient(server.Client(), server.URL)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := client.FetchVerificationKeys(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "context canceled")
	})
}

func TestClient_FetchVerificationKeys_KeyConstruction(t *testing.T) {
	euKeys := `{"a2lkMQ==": [{"subjectPk": "MA=="}]}`

	t.Run("key valid under both algorithms yields ES256 then PS256", func(t *testing.T) {
		client := testClient(t, http.StatusOK, keyDirectoryResponse(t, euKeys))
		client.newKey = func(_ []byte, kid KeyID, alg Algorithm) (VerificationKey, error) {
			return VerificationKey{KeyID: kid, Algorithm: alg}, nil
		}

		keys, err := client.FetchVerificationKeys(testContext(t))
		require.NoError(t, err)

		require.Len(t, keys, 2)
		assert.Equal(t, AlgorithmES256, keys[0].Algorithm)
		assert.Equal(t, AlgorithmPS256, keys[1].Algorithm)
		assert.Equal(t, KeyID("kid1"), keys[0].KeyID)
		assert.Equal(t, KeyID("kid1"), keys[1].KeyID)
	})

	t.Run("PEM passed to key construction", func(t *testing.T) {
		client := testClient(t, http.StatusOK, keyDirectoryResponse(t, euKeys))

		var got []string
		client.newKey = func(pemData []byte, _ KeyID, _ Algorithm) (VerificationKey, error) {
			got = append(got, string(pemData))
			return VerificationKey{}, ErrInvalidKeyFormat
		}

		_, err := client.FetchVerificationKeys(testContext(t))
		require.NoError(t, err)

		wantPEM := "-----BEGIN PUBLIC KEY-----\nMA==\n-----END PUBLIC KEY-----"
		assert.Equal(t, []string{wantPEM, wantPEM}, got)
	})

	t.Run("errors other than invalid key format are returned", func(t *testing.T) {
		client := testClient(t, http.StatusOK, keyDirectoryResponse(t, euKeys))

		boom := errors.New("boom")
		client.newKey = func(_ []byte, _ KeyID, alg Algorithm) (VerificationKey, error) {
			if alg == AlgorithmPS256 {
				return VerificationKey{}, boom
			}
			return VerificationKey{Algorithm: alg}, nil
		}

		keys, err := client.FetchVerificationKeys(testContext(t))
		require.ErrorIs(t, err, boom)
		assert.Nil(t, keys)
	})
}

func TestClient_FetchVerificationKeysDefault(t *testing.T) {
	ecPK := subjectPK(t, &generateECKey(t, elliptic.P256()).PublicKey)
	rsaPK := subjectPK(t, &generateRSAKey(t, 2048).PublicKey)
	client := testClient(t, http.StatusOK, keyDirectoryResponse(t, `{"a2lkMQ==": [{"subjectPk": "`+ecPK+`"}, {"subjectPk": "`+rsaPK+`"}]}`))

	want, err := client.FetchVerificationKeys(testContext(t))
	require.NoError(t, err)

	got, err := client.FetchVerificationKeysDefault(testContext(t))
	require.NoError(t, err)

	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].KeyID, got[i].KeyID)
		assert.Equal(t, want[i].Algorithm, got[i].Algorithm)
		assert.Equal(t, want[i].Key, got[i].Key)
	}
}

func TestNewClient(t *testing.T) {
	client := NewClient(nil, "")

	assert.Equal(t, DefaultEndpoint, client.Endpoint())
	assert.NotNil(t, client.httpClient)
	assert.NotNil(t, client.httpClient.Transport)
}
