package hosting

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/apillon/apillon-go"
)

// Deployment is one deployment of a website. Only Status changes after creation.
type Deployment struct {
	apillon.Entity `json:"-"`

	WebsiteUUID string              `json:"websiteUuid"`
	CID         string              `json:"cid,omitempty"`
	CIDv1       string              `json:"cidv1,omitempty"`
	Environment DeployToEnvironment `json:"environment"`
	Status      DeploymentStatus    `json:"deploymentStatus"`
	Size        int64               `json:"size"`
	Number      int                 `json:"number"`
}

func newDeployment(api *apillon.Client, websiteUUID, uuid string) *Deployment {
	return &Deployment{
		Entity:      apillon.NewEntity(api, uuid, prefix+"/"+websiteUUID+"/deployments/"+uuid),
		WebsiteUUID: websiteUUID,
	}
}

func decodeDeployment(api *apillon.Client, websiteUUID string, raw json.RawMessage) (*Deployment, error) {
	id, err := apillon.DecodeID(raw, "deploymentUuid")
	if err != nil {
		return nil, err
	}
	d := newDeployment(api, websiteUUID, id)
	if err := d.refresh(raw); err != nil {
		return nil, err
	}
	return d, nil
}

// MarshalJSON includes the deployment uuid.
func (d *Deployment) MarshalJSON() ([]byte, error) {
	type plain Deployment
	return apillon.MarshalEntity("deploymentUuid", d.UUID(), (*plain)(d))
}

// Get fetches the deployment. The status always takes the server's value.
func (d *Deployment) Get(ctx context.Context) (*Deployment, error) {
	var raw json.RawMessage
	if err := d.Client().Get(ctx, d.APIPrefix(), &raw); err != nil {
		return nil, fmt.Errorf("get deployment %s: %w", d.UUID(), err)
	}
	if err := d.refresh(raw); err != nil {
		return nil, err
	}
	return d, nil
}

// Wait polls Get every interval until the deployment succeeds or fails,
// or ctx is done. The interval must be positive.
func (d *Deployment) Wait(ctx context.Context, interval time.Duration) (*Deployment, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("wait for deployment %s: interval %s: %w", d.UUID(), interval, apillon.ErrInvalidInput)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := d.Get(ctx); err != nil {
			return nil, err
		}
		if d.Status.Done() {
			return d, nil
		}

		select {
		case <-ctx.Done():
			return d, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (d *Deployment) refresh(raw json.RawMessage) error {
	var state struct {
		Status *DeploymentStatus `json:"deploymentStatus"`
	}
	if err := json.Unmarshal(raw, &state); err != nil {
		return fmt.Errorf("decode deployment %s: %w", d.UUID(), err)
	}
	if state.Status != nil {
		d.Status = *state.Status
	}
	return apillon.PopulateJSON(d, raw)
}
