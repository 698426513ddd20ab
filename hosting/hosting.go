package hosting

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/apillon/apillon-go"
	"github.com/apillon/apillon-go/logging"
	"github.com/apillon/apillon-go/upload"
)

const prefix = "/hosting/websites"

// Hosting is the entry point to websites.
type Hosting struct {
	apillon.Module
}

// New creates the hosting module.
func New(api *apillon.Client) *Hosting {
	return &Hosting{Module: apillon.NewModule(api, prefix)}
}

// Website returns a handle to a website without fetching it.
func (h *Hosting) Website(uuid string) *Website {
	return newWebsite(h.Client(), uuid)
}

// ListWebsites returns one page of websites.
func (h *Hosting) ListWebsites(ctx context.Context, filter *WebsiteFilter) (*apillon.List[*Website], error) {
	var raw apillon.RawList
	if err := h.Client().Get(ctx, apillon.BuildURL(h.APIPrefix(), filter, nil), &raw); err != nil {
		return nil, fmt.Errorf("list websites: %w", err)
	}
	return apillon.DecodeList(raw, func(item json.RawMessage) (*Website, error) {
		return decodeWebsite(h.Client(), item)
	})
}

// CreateWebsiteRequest is the body of CreateWebsite.
type CreateWebsiteRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description,omitempty" validate:"max=1000"`
	Domain      string `json:"domain,omitempty" validate:"omitempty,fqdn"`
}

// CreateWebsite creates a website together with its staging and production buckets.
func (h *Hosting) CreateWebsite(ctx context.Context, req CreateWebsiteRequest) (*Website, error) {
	if err := apillon.ValidateRequest(req); err != nil {
		return nil, err
	}
	var raw json.RawMessage
	if err := h.Client().Post(ctx, h.APIPrefix(), req, &raw); err != nil {
		return nil, fmt.Errorf("create website: %w", err)
	}
	return decodeWebsite(h.Client(), raw)
}

// Website is a static website hosted on IPFS.
type Website struct {
	apillon.Entity `json:"-"`

	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	Domain         string `json:"domain,omitempty"`
	BucketUUID     string `json:"bucketUuid,omitempty"`
	IPNSStaging    string `json:"ipnsStaging,omitempty"`
	IPNSProduction string `json:"ipnsProduction,omitempty"`
}

func newWebsite(api *apillon.Client, uuid string) *Website {
	return &Website{Entity: apillon.NewEntity(api, uuid, prefix+"/"+uuid)}
}

func decodeWebsite(api *apillon.Client, raw json.RawMessage) (*Website, error) {
	id, err := apillon.DecodeID(raw, "websiteUuid")
	if err != nil {
		return nil, err
	}
	w := newWebsite(api, id)
	if err := apillon.PopulateJSON(w, raw); err != nil {
		return nil, err
	}
	return w, nil
}

// MarshalJSON includes the website uuid.
func (w *Website) MarshalJSON() ([]byte, error) {
	type plain Website
	return apillon.MarshalEntity("websiteUuid", w.UUID(), (*plain)(w))
}

// Get fetches the website and fills the fields that are still unset.
func (w *Website) Get(ctx context.Context) (*Website, error) {
	var raw json.RawMessage
	if err := w.Client().Get(ctx, w.APIPrefix(), &raw); err != nil {
		return nil, fmt.Errorf("get website %s: %w", w.UUID(), err)
	}
	if err := apillon.PopulateJSON(w, raw); err != nil {
		return nil, err
	}
	return w, nil
}

// Uploader returns an upload pipeline bound to this website's staging area.
func (w *Website) Uploader() *upload.Uploader {
	return upload.New(w.Client(), w.APIPrefix())
}

// UploadFromFolder uploads every file below root. The files become live
// only after Deploy.
func (w *Website) UploadFromFolder(ctx context.Context, root string, opts upload.Options) (*upload.Result, error) {
	return w.Uploader().UploadFromFolder(ctx, root, opts)
}

// UploadFiles uploads files whose content is held in memory or referenced by LocalPath.
func (w *Website) UploadFiles(ctx context.Context, files []upload.File, opts upload.Options) (*upload.Result, error) {
	return w.Uploader().Upload(ctx, files, opts)
}

type deployRequest struct {
	Environment DeployToEnvironment `json:"environment" validate:"oneof=1 2 3"`
}

// Deploy starts a deployment of the uploaded files to env.
func (w *Website) Deploy(ctx context.Context, env DeployToEnvironment) (*Deployment, error) {
	req := deployRequest{Environment: env}
	if err := apillon.ValidateRequest(req); err != nil {
		return nil, err
	}

	logger := w.Client().Logger()
	target := "production"
	if env == ToStaging {
		target = "preview"
	}
	logger.DebugContext(ctx, "deploying website", "website", w.UUID(), "target", target)
	timer := logging.Start(ctx, logger, "deploy")

	var raw json.RawMessage
	if err := w.Client().Post(ctx, w.APIPrefix()+"/deploy", req, &raw); err != nil {
		return nil, fmt.Errorf("deploy website %s: %w", w.UUID(), err)
	}
	timer.Stop("website", w.UUID())

	return decodeDeployment(w.Client(), w.UUID(), raw)
}

// ListDeployments returns one page of the website's deployments. The
// environment and status filters are sent by name.
func (w *Website) ListDeployments(ctx context.Context, filter *DeploymentFilter) (*apillon.List[*Deployment], error) {
	var raw apillon.RawList
	url := apillon.BuildURL(w.APIPrefix()+"/deployments", filter, deploymentSerializers)
	if err := w.Client().Get(ctx, url, &raw); err != nil {
		return nil, fmt.Errorf("list deployments of website %s: %w", w.UUID(), err)
	}
	return apillon.DecodeList(raw, func(item json.RawMessage) (*Deployment, error) {
		return decodeDeployment(w.Client(), w.UUID(), item)
	})
}

// Deployment returns a handle to a deployment of this website without fetching it.
func (w *Website) Deployment(uuid string) *Deployment {
	return newDeployment(w.Client(), w.UUID(), uuid)
}
