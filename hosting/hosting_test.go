package hosting_test

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apillon/apillon-go"
	"github.com/apillon/apillon-go/hosting"
	"github.com/apillon/apillon-go/internal/apitest"
	"github.com/apillon/apillon-go/upload"
)

const websiteUUID = "7f0c9d0e-3b7a-4f43-9a0e-0f3c2b7c5d21"

func TestListWebsites(t *testing.T) {
	srv := apitest.New(t)
	srv.ReplyRaw(http.MethodGet, "/hosting/websites", `{
		"items": [{"websiteUuid": "w1", "name": "blog", "domain": "blog.example.com", "bucketUuid": "b1"}],
		"total": 1
	}`)

	list, err := hosting.New(srv.Client()).ListWebsites(context.Background(), &hosting.WebsiteFilter{
		Pagination: apillon.Pagination{Page: apillon.Ptr(2), OrderBy: apillon.Ptr("name"), Desc: apillon.Ptr(true)},
	})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "w1", list.Items[0].UUID())
	assert.Equal(t, "blog.example.com", list.Items[0].Domain)

	q := srv.Last(http.MethodGet, "/hosting/websites").Query
	assert.Equal(t, "2", q.Get("page"))
	assert.Equal(t, "name", q.Get("orderBy"))
	assert.Equal(t, "true", q.Get("desc"))
}

func TestCreateWebsite(t *testing.T) {
	srv := apitest.New(t)
	srv.ReplyRaw(http.MethodPost, "/hosting/websites", `{"websiteUuid": "w2", "name": "docs"}`)
	h := hosting.New(srv.Client())

	_, err := h.CreateWebsite(context.Background(), hosting.CreateWebsiteRequest{Name: "docs", Domain: "not a domain"})
	require.ErrorIs(t, err, apillon.ErrInvalidInput)

	w, err := h.CreateWebsite(context.Background(), hosting.CreateWebsiteRequest{Name: "docs"})
	require.NoError(t, err)
	assert.Equal(t, "w2", w.UUID())
	assert.Len(t, srv.RequestsTo(http.MethodPost, "/hosting/websites"), 1)
}

func TestWebsiteGet(t *testing.T) {
	srv := apitest.New(t)
	srv.ReplyRaw(http.MethodGet, "/hosting/websites/"+websiteUUID,
		`{"websiteUuid": "`+websiteUUID+`", "name": "remote", "ipnsStaging": "k51stage", "ipnsProduction": "k51prod"}`)

	w := hosting.New(srv.Client()).Website(websiteUUID)
	w.Name = "mine"
	_, err := w.Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "mine", w.Name)
	assert.Equal(t, "k51stage", w.IPNSStaging)
	assert.Equal(t, "k51prod", w.IPNSProduction)
}

func TestDeploy(t *testing.T) {
	srv := apitest.New(t)
	srv.ReplyRaw(http.MethodPost, "/hosting/websites/"+websiteUUID+"/deploy",
		`{"deploymentUuid": "d1", "environment": 1, "deploymentStatus": 0, "number": 3}`)

	d, err := hosting.New(srv.Client()).Website(websiteUUID).Deploy(context.Background(), hosting.ToStaging)
	require.NoError(t, err)

	assert.Equal(t, "d1", d.UUID())
	assert.Equal(t, websiteUUID, d.WebsiteUUID)
	assert.Equal(t, hosting.ToStaging, d.Environment)
	assert.Equal(t, hosting.DeploymentInitiated, d.Status)
	assert.Equal(t, 3, d.Number)

	var body map[string]int
	srv.Last(http.MethodPost, "/hosting/websites/"+websiteUUID+"/deploy").Decode(t, &body)
	assert.Equal(t, map[string]int{"environment": 1}, body)
}

func TestDeploy_InvalidEnvironment(t *testing.T) {
	srv := apitest.New(t)
	_, err := hosting.New(srv.Client()).Website(websiteUUID).Deploy(context.Background(), hosting.DeployToEnvironment(9))
	assert.ErrorIs(t, err, apillon.ErrInvalidInput)
	assert.Empty(t, srv.Requests())
}

func TestListDeployments_SerializesEnumsByName(t *testing.T) {
	srv := apitest.New(t)
	srv.ReplyRaw(http.MethodGet, "/hosting/websites/"+websiteUUID+"/deployments", `{
		"items": [
			{"deploymentUuid": "d1", "websiteUuid": "`+websiteUUID+`", "environment": 2, "deploymentStatus": 10, "cid": "Qm1"},
			{"deploymentUuid": "d2", "websiteUuid": "`+websiteUUID+`", "environment": 2, "deploymentStatus": 100}
		],
		"total": 2
	}`)

	list, err := hosting.New(srv.Client()).Website(websiteUUID).ListDeployments(context.Background(), &hosting.DeploymentFilter{
		Environment: apillon.Ptr(hosting.StagingToProduction),
		Status:      apillon.Ptr(hosting.DeploymentSuccessful),
		Pagination:  apillon.Pagination{Limit: apillon.Ptr(10)},
	})
	require.NoError(t, err)
	require.Len(t, list.Items, 2)
	assert.Equal(t, hosting.DeploymentSuccessful, list.Items[0].Status)
	assert.Equal(t, hosting.DeploymentFailed, list.Items[1].Status)
	assert.Equal(t, "/hosting/websites/"+websiteUUID+"/deployments/d2", list.Items[1].APIPrefix())

	q := srv.Last(http.MethodGet, "/hosting/websites/"+websiteUUID+"/deployments").Query
	assert.Equal(t, "STAGING_TO_PRODUCTION", q.Get("environment"))
	assert.Equal(t, "SUCCESSFUL", q.Get("deploymentStatus"))
	assert.Equal(t, "10", q.Get("limit"))
}

func TestDeploymentFilter_URLIsDeterministic(t *testing.T) {
	f := &hosting.DeploymentFilter{
		Environment: apillon.Ptr(hosting.ToStaging),
		Pagination:  apillon.Pagination{Page: apillon.Ptr(1)},
	}
	first := apillon.BuildURL("/deployments", f, apillon.Serializers{"environment": apillon.EnumName})
	second := apillon.BuildURL("/deployments", f, apillon.Serializers{"environment": apillon.EnumName})

	assert.Equal(t, first, second)
	assert.Equal(t, "/deployments?environment=TO_STAGING&page=1", first)
}

func TestDeploymentGet_RefreshesStatus(t *testing.T) {
	srv := apitest.New(t)
	srv.ReplyRaw(http.MethodGet, "/hosting/websites/"+websiteUUID+"/deployments/d1",
		`{"deploymentUuid": "d1", "deploymentStatus": 10, "cid": "QmRemote", "size": 2048}`)

	d := hosting.New(srv.Client()).Website(websiteUUID).Deployment("d1")
	d.Status = hosting.DeploymentInProcess
	d.CID = "QmLocal"

	_, err := d.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, hosting.DeploymentSuccessful, d.Status)
	assert.Equal(t, "QmLocal", d.CID)
	assert.Equal(t, int64(2048), d.Size)
}

func TestDeploymentWait(t *testing.T) {
	srv := apitest.New(t)
	var calls atomic.Int32
	srv.Handle(http.MethodGet, "/hosting/websites/"+websiteUUID+"/deployments/d1", func(w http.ResponseWriter, r *http.Request) {
		status := hosting.DeploymentInProcess
		if calls.Add(1) >= 3 {
			status = hosting.DeploymentSuccessful
		}
		apitest.WriteData(w, http.StatusOK, map[string]any{"deploymentUuid": "d1", "deploymentStatus": status})
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	d, err := hosting.New(srv.Client()).Website(websiteUUID).Deployment("d1").Wait(ctx, 5*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, hosting.DeploymentSuccessful, d.Status)
	assert.Equal(t, int32(3), calls.Load())
}

func TestDeploymentWait_NonPositiveInterval(t *testing.T) {
	srv := apitest.New(t)
	d := hosting.New(srv.Client()).Website(websiteUUID).Deployment("d1")

	for _, interval := range []time.Duration{0, -time.Second} {
		t.Run(interval.String(), func(t *testing.T) {
			var err error
			require.NotPanics(t, func() {
				_, err = d.Wait(context.Background(), interval)
			})
			assert.ErrorIs(t, err, apillon.ErrInvalidInput)
		})
	}
	assert.Empty(t, srv.Requests())
}

func TestWebsiteUploadFiles(t *testing.T) {
	srv := apitest.New(t)
	sess := srv.UploadSession("/hosting/websites/" + websiteUUID)

	_, err := hosting.New(srv.Client()).Website(websiteUUID).UploadFiles(context.Background(), []upload.File{
		{FileName: "index.html", Content: []byte("<h1>hi</h1>"), ContentType: "text/html"},
	}, upload.Options{})
	require.NoError(t, err)

	assert.Equal(t, "<h1>hi</h1>", string(sess.Uploaded()["index.html"]))
	assert.Equal(t, 1, sess.EndCalls())
}

func TestParseEnums(t *testing.T) {
	env, err := hosting.ParseEnvironment("to_staging")
	require.NoError(t, err)
	assert.Equal(t, hosting.ToStaging, env)

	env, err = hosting.ParseEnvironment("3")
	require.NoError(t, err)
	assert.Equal(t, hosting.DirectlyToProduction, env)

	_, err = hosting.ParseEnvironment("prod")
	assert.ErrorIs(t, err, apillon.ErrInvalidInput)

	st, err := hosting.ParseDeploymentStatus("FAILED")
	require.NoError(t, err)
	assert.Equal(t, hosting.DeploymentFailed, st)
	assert.True(t, st.Done())
	assert.False(t, hosting.DeploymentInProcess.Done())
}
