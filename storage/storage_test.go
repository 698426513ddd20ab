package storage_test

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apillon/apillon-go"
	"github.com/apillon/apillon-go/internal/apitest"
	"github.com/apillon/apillon-go/storage"
	"github.com/apillon/apillon-go/upload"
)

const (
	bucketUUID = "b6f4b8a4-8d4c-4e0c-9f3c-6c1c1b0d2a11"
	cidV0      = "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG"
	cidV1      = "bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi"
)

func TestListBuckets(t *testing.T) {
	srv := apitest.New(t)
	srv.ReplyRaw(http.MethodGet, "/storage/buckets", `{
		"items": [
			{"bucketUuid": "u1", "name": "first", "size": 100, "maxSize": 1000},
			{"bucketUuid": "u2", "name": "second"}
		],
		"total": 2
	}`)

	s := storage.New(srv.Client())
	list, err := s.ListBuckets(context.Background(), &storage.BucketFilter{
		Pagination: apillon.Pagination{Search: apillon.Ptr("fi"), Limit: apillon.Ptr(5)},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, list.Total)
	require.Len(t, list.Items, 2)
	assert.Equal(t, "u1", list.Items[0].UUID())
	assert.Equal(t, "first", list.Items[0].Name)
	assert.Equal(t, int64(1000), list.Items[0].MaxSize)
	assert.Equal(t, "/storage/buckets/u2", list.Items[1].APIPrefix())

	req := srv.Last(http.MethodGet, "/storage/buckets")
	assert.Equal(t, "fi", req.Query.Get("search"))
	assert.Equal(t, "5", req.Query.Get("limit"))
	assert.False(t, req.Query.Has("page"), "unset filters are omitted")
}

func TestCreateBucket(t *testing.T) {
	srv := apitest.New(t)
	srv.ReplyRaw(http.MethodPost, "/storage/buckets", `{"bucketUuid": "new", "name": "site", "description": "d"}`)
	s := storage.New(srv.Client())

	_, err := s.CreateBucket(context.Background(), storage.CreateBucketRequest{})
	require.ErrorIs(t, err, apillon.ErrInvalidInput)
	assert.Empty(t, srv.Requests())

	b, err := s.CreateBucket(context.Background(), storage.CreateBucketRequest{Name: "site", Description: "d"})
	require.NoError(t, err)
	assert.Equal(t, "new", b.UUID())
	assert.Equal(t, "site", b.Name)

	var body map[string]string
	srv.Last(http.MethodPost, "/storage/buckets").Decode(t, &body)
	assert.Equal(t, map[string]string{"name": "site", "description": "d"}, body)
}

func TestBucketGet_KeepsLocalFields(t *testing.T) {
	srv := apitest.New(t)
	srv.ReplyRaw(http.MethodGet, "/storage/buckets/"+bucketUUID,
		`{"bucketUuid": "`+bucketUUID+`", "name": "remote", "description": "from server", "size": 42}`)

	b := storage.New(srv.Client()).Bucket(bucketUUID)
	b.Name = "local"

	got, err := b.Get(context.Background())
	require.NoError(t, err)
	assert.Same(t, b, got)
	assert.Equal(t, "local", b.Name, "populate never overwrites a set field")
	assert.Equal(t, "from server", b.Description)
	assert.Equal(t, int64(42), b.Size)
	assert.Equal(t, bucketUUID, b.UUID())
}

func TestGetObjects(t *testing.T) {
	srv := apitest.New(t)
	srv.ReplyRaw(http.MethodGet, "/storage/buckets/"+bucketUUID+"/content", `{
		"items": [
			{"type": 1, "uuid": "d1", "name": "images"},
			{"type": 2, "uuid": "f1", "name": "index.html", "CID": "`+cidV0+`", "fileStatus": 3, "size": 12}
		],
		"total": 2
	}`)

	b := storage.New(srv.Client()).Bucket(bucketUUID)
	list, err := b.GetObjects(context.Background(), &storage.ContentFilter{
		DirectoryUUID:     apillon.Ptr("root"),
		MarkedForDeletion: apillon.Ptr(false),
	})
	require.NoError(t, err)
	require.Len(t, list.Items, 2)

	dir, ok := list.Items[0].(*storage.Directory)
	require.True(t, ok)
	assert.Equal(t, "d1", dir.UUID())
	assert.Equal(t, "images", dir.Name)
	assert.Equal(t, storage.ContentTypeDirectory, dir.Kind())

	file, ok := list.Items[1].(*storage.File)
	require.True(t, ok)
	assert.Equal(t, "f1", file.UUID())
	assert.Equal(t, bucketUUID, file.BucketUUID)
	assert.Equal(t, storage.FileStatusAvailableOnIPFS, file.Status)
	assert.Equal(t, "/storage/buckets/"+bucketUUID+"/files/f1", file.APIPrefix())

	req := srv.Last(http.MethodGet, "/storage/buckets/"+bucketUUID+"/content")
	assert.Equal(t, "root", req.Query.Get("directoryUuid"))
	assert.Equal(t, "false", req.Query.Get("markedForDeletion"))
}

func TestGetObjects_UnknownType(t *testing.T) {
	srv := apitest.New(t)
	srv.ReplyRaw(http.MethodGet, "/storage/buckets/"+bucketUUID+"/content",
		`{"items": [{"type": 7, "uuid": "x"}], "total": 1}`)

	_, err := storage.New(srv.Client()).Bucket(bucketUUID).GetObjects(context.Background(), nil)
	var perr *apillon.ProtocolError
	assert.ErrorAs(t, err, &perr)
}

func TestGetFilesRecursive(t *testing.T) {
	// D1(F1), D2(D3(F2))
	tree := map[string]string{
		"":   `[{"type":1,"uuid":"D1","name":"d1"},{"type":1,"uuid":"D2","name":"d2"}]`,
		"D1": `[{"type":2,"uuid":"F1","name":"f1"}]`,
		"D2": `[{"type":1,"uuid":"D3","name":"d3"}]`,
		"D3": `[{"type":2,"uuid":"F2","name":"f2"}]`,
	}

	srv := apitest.New(t)
	srv.Handle(http.MethodGet, "/storage/buckets/"+bucketUUID+"/content", func(w http.ResponseWriter, r *http.Request) {
		items, ok := tree[r.URL.Query().Get("directoryUuid")]
		if !ok {
			apitest.WriteError(w, r, http.StatusNotFound, 40400002, "directory not found")
			return
		}
		apitest.WriteData(w, http.StatusOK, map[string]any{"items": json.RawMessage(items), "total": 0})
	})

	files, err := storage.New(srv.Client()).Bucket(bucketUUID).GetFilesRecursive(context.Background(), nil)
	require.NoError(t, err)

	var uuids []string
	for _, f := range files {
		uuids = append(uuids, f.UUID())
	}
	assert.Equal(t, []string{"F1", "F2"}, uuids)
	assert.Len(t, srv.RequestsTo(http.MethodGet, "/storage/buckets/"+bucketUUID+"/content"), 4,
		"one request per directory level")
}

func TestGetFilesRecursive_PropagatesErrors(t *testing.T) {
	srv := apitest.New(t)
	srv.Handle(http.MethodGet, "/storage/buckets/"+bucketUUID+"/content", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("directoryUuid") == "" {
			apitest.WriteData(w, http.StatusOK, map[string]any{
				"items": []map[string]any{{"type": 1, "uuid": "D1"}},
				"total": 1,
			})
			return
		}
		apitest.WriteError(w, r, http.StatusInternalServerError, 50000000, "boom")
	})

	_, err := storage.New(srv.Client()).Bucket(bucketUUID).GetFilesRecursive(context.Background(), nil)
	var apiErr *apillon.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "boom", apiErr.Message)
}

func TestGetFiles(t *testing.T) {
	srv := apitest.New(t)
	srv.ReplyRaw(http.MethodGet, "/storage/buckets/"+bucketUUID+"/files",
		`{"items": [{"fileUuid": "f9", "name": "a.txt", "fileStatus": 2}], "total": 1}`)

	list, err := storage.New(srv.Client()).Bucket(bucketUUID).GetFiles(context.Background(), &storage.FileFilter{
		FileStatus:  apillon.Ptr(storage.FileStatusUploaded),
		SessionUUID: apillon.Ptr("s1"),
	})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "f9", list.Items[0].UUID())

	req := srv.Last(http.MethodGet, "/storage/buckets/"+bucketUUID+"/files")
	assert.Equal(t, "2", req.Query.Get("fileStatus"), "enums go out as their numeric value")
	assert.Equal(t, "s1", req.Query.Get("sessionUuid"))
}

func TestFileGet(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{
			name: "flat record",
			data: `{"fileUuid": "f1", "name": "remote.txt", "CID": "` + cidV0 + `", "fileStatus": 3}`,
		},
		{
			name: "nested record",
			data: `{"fileStatus": 3, "file": {"fileUuid": "f1", "name": "remote.txt", "CID": "` + cidV0 + `"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := apitest.New(t)
			srv.ReplyRaw(http.MethodGet, "/storage/buckets/"+bucketUUID+"/files/f1", tt.data)

			f := storage.New(srv.Client()).Bucket(bucketUUID).File("f1")
			f.Name = "local.txt"
			f.Status = storage.FileStatusUploadRequestGenerated

			_, err := f.Get(context.Background())
			require.NoError(t, err)

			assert.Equal(t, "local.txt", f.Name)
			assert.Equal(t, cidV0, f.CID)
			assert.Equal(t, storage.FileStatusAvailableOnIPFS, f.Status, "status always follows the server")
		})
	}
}

func TestFileGet_NotFound(t *testing.T) {
	srv := apitest.New(t)
	srv.ReplyError(http.MethodGet, "/storage/buckets/"+bucketUUID+"/files/missing", http.StatusNotFound, 40406005, "File not found")

	_, err := storage.New(srv.Client()).Bucket(bucketUUID).File("missing").Get(context.Background())
	assert.ErrorIs(t, err, apillon.ErrNotFound)
}

func TestFileParsedCID(t *testing.T) {
	f := storage.New(nil).Bucket(bucketUUID).File("f1")

	_, err := f.ParsedCID()
	assert.ErrorIs(t, err, apillon.ErrInvalidInput)

	f.CID = cidV0
	c, err := f.ParsedCID()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), c.Version())

	f.CIDv1 = cidV1
	c, err = f.ParsedCID()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), c.Version())
}

func TestDelete(t *testing.T) {
	srv := apitest.New(t)
	srv.ReplyRaw(http.MethodDelete, "/storage/buckets/"+bucketUUID+"/files/f1", `{"status": 8}`)
	srv.ReplyRaw(http.MethodDelete, "/storage/buckets/"+bucketUUID+"/directories/d1", `true`)

	b := storage.New(srv.Client()).Bucket(bucketUUID)
	require.NoError(t, b.DeleteFile(context.Background(), "f1"))
	require.NoError(t, b.DeleteDirectory(context.Background(), "d1"))

	assert.Len(t, srv.RequestsTo(http.MethodDelete, "/storage/buckets/"+bucketUUID+"/files/f1"), 1)
	assert.Len(t, srv.RequestsTo(http.MethodDelete, "/storage/buckets/"+bucketUUID+"/directories/d1"), 1)
}

func TestDirectoryGet(t *testing.T) {
	srv := apitest.New(t)
	srv.ReplyRaw(http.MethodGet, "/storage/buckets/"+bucketUUID+"/content",
		`{"items": [{"type": 2, "uuid": "f1", "name": "a"}], "total": 1}`)

	d, err := storage.New(srv.Client()).Bucket(bucketUUID).Directory("d1").Get(context.Background())
	require.NoError(t, err)
	require.Len(t, d.Objects, 1)
	assert.Equal(t, "f1", d.Objects[0].UUID())
	assert.Equal(t, "d1", srv.Last(http.MethodGet, "/storage/buckets/"+bucketUUID+"/content").Query.Get("directoryUuid"))
}

func TestBucketUploadFromFolder(t *testing.T) {
	srv := apitest.New(t)
	sess := srv.UploadSession("/storage/buckets/" + bucketUUID)

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "a"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "b"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a", "same.txt"), []byte("from a"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b", "same.txt"), []byte("from b"), 0o600))

	res, err := storage.New(srv.Client()).Bucket(bucketUUID).UploadFromFolder(context.Background(), root, upload.Options{})
	require.NoError(t, err)
	assert.Len(t, res.Files, 2)

	uploaded := sess.Uploaded()
	assert.Equal(t, "from a", string(uploaded["a/same.txt"]), "files sharing a name keep their own content")
	assert.Equal(t, "from b", string(uploaded["b/same.txt"]))
}

func TestIPNS(t *testing.T) {
	srv := apitest.New(t)
	base := "/storage/buckets/" + bucketUUID + "/ipns"
	srv.ReplyRaw(http.MethodGet, base, `{"items": [{"ipnsUuid": "i1", "name": "site", "ipnsName": "k51"}], "total": 1}`)
	srv.ReplyRaw(http.MethodPost, base, `{"ipnsUuid": "i2", "name": "new"}`)
	srv.ReplyRaw(http.MethodPost, base+"/i2/publish", `{"ipnsUuid": "i2", "ipnsName": "k51new", "ipnsValue": "/ipfs/`+cidV1+`"}`)
	srv.ReplyRaw(http.MethodDelete, base+"/i2", `true`)

	m := storage.New(srv.Client()).Bucket(bucketUUID).IPNS()
	ctx := context.Background()

	list, err := m.List(ctx, &storage.IPNSFilter{IPNSName: apillon.Ptr("k51")})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "i1", list.Items[0].UUID())
	assert.Equal(t, "k51", srv.Last(http.MethodGet, base).Query.Get("ipnsName"))

	_, err = m.Create(ctx, storage.CreateIPNSRequest{Name: "bad", CID: "not-a-cid"})
	require.ErrorIs(t, err, apillon.ErrInvalidInput)

	rec, err := m.Create(ctx, storage.CreateIPNSRequest{Name: "new"})
	require.NoError(t, err)
	assert.Equal(t, "i2", rec.UUID())

	_, err = rec.Publish(ctx, "nope")
	require.ErrorIs(t, err, apillon.ErrInvalidInput)

	_, err = rec.Publish(ctx, cidV1)
	require.NoError(t, err)
	assert.Equal(t, "k51new", rec.IPNSName)
	assert.Equal(t, "/ipfs/"+cidV1, rec.IPNSValue)

	var body map[string]string
	srv.Last(http.MethodPost, base+"/i2/publish").Decode(t, &body)
	assert.Equal(t, cidV1, body["cid"])

	require.NoError(t, rec.Delete(ctx))
}

func TestBucketMarshalJSON(t *testing.T) {
	srv := apitest.New(t)
	b := storage.New(srv.Client()).Bucket(bucketUUID)
	b.Name = "site"

	out, err := json.Marshal(b)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(out, &m))
	assert.Equal(t, bucketUUID, m["bucketUuid"])
	assert.Equal(t, "site", m["name"])
}
