package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apillon/apillon-go/clientcli"
	"github.com/apillon/apillon-go/internal/apitest"
)

const (
	bucketUUID   = "6b5c0f3a-6f0e-4c3e-9d55-6f5b3b0d7a11"
	fileUUID     = "0d8f1c2b-93f4-4a4e-8c1e-2f0e7a6b9c01"
	missingUUID  = "a3c4e5f6-1b2d-4e8f-9a0b-c1d2e3f4a5b6"
	websiteUUID  = "9e2a4b6c-8d0f-4a1b-b3c5-d7e9f1a3b5c7"
	functionUUID = "4f6e8d0c-2b4a-4698-8765-4321fedcba98"
)

// isolate hides the user's profiles and APILLON_* variables from the test.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, key := range []string{
		"APILLON_API_URL", "APILLON_API_KEY", "APILLON_API_SECRET",
		"APILLON_PROFILE", "APILLON_CONFIG",
		"APILLON_LOG_LEVEL", "APILLON_LOG_JSON", "APILLON_DEBUG",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func execute(t *testing.T, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(context.Background(), args, strings.NewReader(""), &out, &errOut)
	return out.String(), errOut.String(), code
}

func credentials(srv *apitest.Server) []string {
	return []string{"--api-url", srv.URL, "--key", apitest.Key, "--secret", apitest.Secret}
}

func TestListBuckets(t *testing.T) {
	isolate(t)
	srv := apitest.New(t)
	srv.ReplyRaw(http.MethodGet, "/storage/buckets", `{
		"items": [{"bucketUuid": "`+bucketUUID+`", "name": "assets", "size": 2048, "maxSize": 1048576}],
		"total": 1
	}`)

	t.Run("human", func(t *testing.T) {
		out, stderr, code := execute(t, append([]string{"storage", "list-buckets", "--limit", "5"}, credentials(srv)...)...)
		require.Equal(t, 0, code, stderr)
		assert.Contains(t, out, "assets")
		assert.Contains(t, out, "1 of 1 bucket(s)")
		assert.Equal(t, "5", srv.Last(http.MethodGet, "/storage/buckets").Query.Get("limit"))
	})

	t.Run("json", func(t *testing.T) {
		out, stderr, code := execute(t, append([]string{"storage", "list-buckets", "--json"}, credentials(srv)...)...)
		require.Equal(t, 0, code, stderr)

		var list struct {
			Items []map[string]any `json:"items"`
			Total int              `json:"total"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &list))
		require.Len(t, list.Items, 1)
		assert.Equal(t, bucketUUID, list.Items[0]["bucketUuid"])
		assert.False(t, srv.Last(http.MethodGet, "/storage/buckets").Query.Has("limit"), "unset flags are not sent")
	})
}

func TestMissingCredentials(t *testing.T) {
	isolate(t)

	_, stderr, code := execute(t, "storage", "list-buckets")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "api key is required")
}

func TestInvalidID(t *testing.T) {
	isolate(t)
	srv := apitest.New(t)

	_, stderr, code := execute(t, append([]string{"storage", "get-file", bucketUUID, "not-a-uuid"}, credentials(srv)...)...)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "not-a-uuid")
	assert.Empty(t, srv.Requests())
}

func TestAPIErrorJSON(t *testing.T) {
	isolate(t)
	srv := apitest.New(t)
	srv.ReplyError(http.MethodGet, "/storage/buckets/"+bucketUUID+"/files/"+missingUUID, http.StatusNotFound, 40406005, "File not found")

	_, stderr, code := execute(t, append([]string{"storage", "get-file", bucketUUID, missingUUID, "--json"}, credentials(srv)...)...)
	assert.Equal(t, 1, code)

	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(stderr), &out))
	assert.EqualValues(t, http.StatusNotFound, out["status"])
	assert.EqualValues(t, 40406005, out["code"])
}

func TestDeleteFile_PartialFailure(t *testing.T) {
	isolate(t)
	srv := apitest.New(t)
	srv.ReplyRaw(http.MethodDelete, "/storage/buckets/"+bucketUUID+"/files/"+fileUUID, `true`)
	srv.ReplyError(http.MethodDelete, "/storage/buckets/"+bucketUUID+"/files/"+missingUUID, http.StatusNotFound, 40406005, "File not found")

	out, _, code := execute(t, append([]string{"storage", "delete-file", bucketUUID, fileUUID, missingUUID}, credentials(srv)...)...)
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "Deleted: "+fileUUID)
	assert.Contains(t, out, "Error: "+missingUUID)
}

func TestListDeployments_Filters(t *testing.T) {
	isolate(t)
	srv := apitest.New(t)
	srv.ReplyRaw(http.MethodGet, "/hosting/websites/"+websiteUUID+"/deployments", `{"items": [], "total": 0}`)

	out, stderr, code := execute(t, append([]string{
		"hosting", "list-deployments", websiteUUID, "--env", "production", "--status", "successful",
	}, credentials(srv)...)...)
	assert.Equal(t, 1, code, "unknown environment")
	assert.Contains(t, stderr, "production")
	assert.Empty(t, out)

	out, stderr, code = execute(t, append([]string{
		"hosting", "list-deployments", websiteUUID, "--env", "to_staging", "--status", "successful",
	}, credentials(srv)...)...)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, out, "No deployments found")

	query := srv.Last(http.MethodGet, "/hosting/websites/"+websiteUUID+"/deployments").Query
	assert.Equal(t, "TO_STAGING", query.Get("environment"))
	assert.Equal(t, "SUCCESSFUL", query.Get("deploymentStatus"))
}

func TestDeployWebsite_InvalidInterval(t *testing.T) {
	isolate(t)
	srv := apitest.New(t)

	_, stderr, code := execute(t, append([]string{
		"hosting", "deploy-website", websiteUUID, "--wait", "--interval", "0s",
	}, credentials(srv)...)...)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "--interval must be positive")
	assert.Empty(t, srv.Requests(), "nothing is deployed")
}

func TestSetEnvironment(t *testing.T) {
	isolate(t)
	srv := apitest.New(t)
	srv.ReplyRaw(http.MethodPost, "/cloud-functions/"+functionUUID+"/environment", `{}`)

	out, stderr, code := execute(t, append([]string{
		"cloud-functions", "set-environment", functionUUID, "API_URL=https://example.com/?a=b", "EMPTY=",
	}, credentials(srv)...)...)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, out, "2 variable(s)")

	var body struct {
		Variables []map[string]string `json:"variables"`
	}
	srv.Last(http.MethodPost, "/cloud-functions/"+functionUUID+"/environment").Decode(t, &body)
	require.Len(t, body.Variables, 2)
	assert.Equal(t, "https://example.com/?a=b", body.Variables[0]["value"])
	assert.Equal(t, "EMPTY", body.Variables[1]["key"])

	_, _, code = execute(t, append([]string{"cloud-functions", "set-environment", functionUUID, "NOVALUE"}, credentials(srv)...)...)
	assert.Equal(t, 1, code)
}

func TestConfigureAndUseProfile(t *testing.T) {
	isolate(t)
	srv := apitest.New(t)
	srv.ReplyRaw(http.MethodGet, "/storage/buckets", `{"items": [], "total": 0}`)
	path := filepath.Join(t.TempDir(), "profiles.yaml")

	_, stderr, code := execute(t, append([]string{"configure", "add", "dev", "--config", path}, credentials(srv)...)...)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stderr, "OK")

	file, err := clientcli.LoadConfigFile(path)
	require.NoError(t, err)
	require.Len(t, file.Profiles, 1)
	assert.Equal(t, srv.URL, file.Profiles[0].APIURL)
	assert.True(t, file.Profiles[0].Default, "the first profile is the default")

	out, stderr, code := execute(t, "configure", "list", "--config", path)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, out, "* dev")
	assert.NotContains(t, out, apitest.Secret)

	out, stderr, code = execute(t, "storage", "list-buckets", "--config", path)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, out, "No buckets found")

	_, stderr, code = execute(t, "storage", "list-buckets", "--config", path, "--profile", "prod")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "profile not found")
}

func TestConfigureList_Empty(t *testing.T) {
	isolate(t)

	out, stderr, code := execute(t, "configure", "list", "--json")
	require.Equal(t, 0, code, stderr)
	assert.JSONEq(t, `{"profiles": []}`, out)
}
