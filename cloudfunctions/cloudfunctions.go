// Package cloudfunctions manages serverless functions executed on the
// Acurast network and their jobs.
//
// A function owns a bucket for its scripts and a set of jobs; each job runs
// one script, referenced by its IPFS CID, on a number of processor slots.
// Environment variables are set per function and shared by its jobs.
package cloudfunctions

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/apillon/apillon-go"
)

const prefix = "/cloud-functions"

// DefaultSlots is the number of processors a job runs on when unset.
const DefaultSlots = 1

// JobStatus is the state of a job on the processor network.
type JobStatus int

const (
	JobDeploying JobStatus = 1
	JobDeployed  JobStatus = 2
	JobMatched   JobStatus = 3
	JobInactive  JobStatus = 4
	JobDeleted   JobStatus = 9
)

func (s JobStatus) String() string {
	switch s {
	case JobDeploying:
		return "DEPLOYING"
	case JobDeployed:
		return "DEPLOYED"
	case JobMatched:
		return "MATCHED"
	case JobInactive:
		return "INACTIVE"
	case JobDeleted:
		return "DELETED"
	default:
		return strconv.Itoa(int(s))
	}
}

// Option configures the module.
type Option func(*CloudFunctions)

// WithGatewayDomain sets the domain gateway URLs are derived from when the
// API does not return one, e.g. "gateway.example.com".
func WithGatewayDomain(domain string) Option {
	return func(m *CloudFunctions) {
		m.gatewayDomain = strings.Trim(domain, "./")
	}
}

// CloudFunctions is the entry point to cloud functions.
type CloudFunctions struct {
	apillon.Module
	gatewayDomain string
}

// New creates the cloud functions module.
func New(api *apillon.Client, opts ...Option) *CloudFunctions {
	m := &CloudFunctions{Module: apillon.NewModule(api, prefix)}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Filter filters ListCloudFunctions.
type Filter struct {
	apillon.Pagination
}

// ListCloudFunctions returns one page of functions.
func (m *CloudFunctions) ListCloudFunctions(ctx context.Context, filter *Filter) (*apillon.List[*CloudFunction], error) {
	var raw apillon.RawList
	if err := m.Client().Get(ctx, apillon.BuildURL(m.APIPrefix(), filter, nil), &raw); err != nil {
		return nil, fmt.Errorf("list cloud functions: %w", err)
	}
	return apillon.DecodeList(raw, m.decode)
}

// CreateRequest is the body of CreateCloudFunction.
type CreateRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description,omitempty" validate:"max=1000"`
}

// CreateCloudFunction creates a function.
func (m *CloudFunctions) CreateCloudFunction(ctx context.Context, req CreateRequest) (*CloudFunction, error) {
	if err := apillon.ValidateRequest(req); err != nil {
		return nil, err
	}
	var raw json.RawMessage
	if err := m.Client().Post(ctx, m.APIPrefix(), req, &raw); err != nil {
		return nil, fmt.Errorf("create cloud function: %w", err)
	}
	return m.decode(raw)
}

// CloudFunction returns a handle to a function without fetching it.
func (m *CloudFunctions) CloudFunction(uuid string) *CloudFunction {
	return &CloudFunction{
		Entity: apillon.NewEntity(m.Client(), uuid, prefix+"/"+uuid),
		module: m,
	}
}

// Job returns a handle to a job without fetching its function.
func (m *CloudFunctions) Job(uuid string) *Job {
	return newJob(m.Client(), uuid)
}

func (m *CloudFunctions) decode(raw json.RawMessage) (*CloudFunction, error) {
	id, err := apillon.DecodeID(raw, "functionUuid")
	if err != nil {
		return nil, err
	}
	fn := m.CloudFunction(id)
	if err := fn.populate(raw); err != nil {
		return nil, err
	}
	return fn, nil
}

// CloudFunction is a serverless function.
type CloudFunction struct {
	apillon.Entity `json:"-"`

	BucketUUID  string `json:"bucketUuid,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	GatewayURL  string `json:"gatewayUrl,omitempty"`

	Jobs []*Job `json:"-"`

	module *CloudFunctions
}

// MarshalJSON includes the function uuid and its loaded jobs.
func (f *CloudFunction) MarshalJSON() ([]byte, error) {
	type plain CloudFunction
	return apillon.MarshalEntity("functionUuid", f.UUID(), struct {
		*plain
		Jobs []*Job `json:"jobs,omitempty"`
	}{(*plain)(f), f.Jobs})
}

// Get fetches the function together with its jobs. Jobs are replaced with
// the server's list.
func (f *CloudFunction) Get(ctx context.Context) (*CloudFunction, error) {
	var raw json.RawMessage
	if err := f.Client().Get(ctx, f.APIPrefix(), &raw); err != nil {
		return nil, fmt.Errorf("get cloud function %s: %w", f.UUID(), err)
	}

	var body struct {
		Jobs []json.RawMessage `json:"jobs"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("decode cloud function %s: %w", f.UUID(), err)
	}
	if body.Jobs != nil {
		jobs := make([]*Job, 0, len(body.Jobs))
		for _, item := range body.Jobs {
			j, err := decodeJob(f.Client(), item)
			if err != nil {
				return nil, err
			}
			jobs = append(jobs, j)
		}
		f.Jobs = jobs
	}

	if err := f.populate(raw); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *CloudFunction) populate(raw json.RawMessage) error {
	if err := apillon.PopulateJSON(f, raw); err != nil {
		return err
	}
	if f.GatewayURL == "" && f.module != nil && f.module.gatewayDomain != "" {
		f.GatewayURL = "https://" + f.UUID() + "." + f.module.gatewayDomain
	}
	return nil
}

// EnvVar is one environment variable of a function.
type EnvVar struct {
	Key   string `json:"key" validate:"required,max=255"`
	Value string `json:"value"`
}

type environmentRequest struct {
	Variables []EnvVar `json:"variables" validate:"dive"`
}

// SetEnvironment replaces the function's environment variables.
func (f *CloudFunction) SetEnvironment(ctx context.Context, vars []EnvVar) error {
	req := environmentRequest{Variables: vars}
	if req.Variables == nil {
		req.Variables = []EnvVar{}
	}
	if err := apillon.ValidateRequest(req); err != nil {
		return err
	}
	if err := f.Client().Post(ctx, f.APIPrefix()+"/environment", req, nil); err != nil {
		return fmt.Errorf("set environment of cloud function %s: %w", f.UUID(), err)
	}
	f.Client().Logger().DebugContext(ctx, "environment variables set", "function", f.UUID(), "count", len(vars))
	return nil
}

// CreateJobRequest is the body of CreateJob.
type CreateJobRequest struct {
	Name      string `json:"name" validate:"required,max=255"`
	ScriptCID string `json:"scriptCid" validate:"cid"`
	Slots     int    `json:"slots" validate:"gte=0"`
}

// CreateJob deploys a script as a new job of the function.
func (f *CloudFunction) CreateJob(ctx context.Context, req CreateJobRequest) (*Job, error) {
	if req.Slots == 0 {
		req.Slots = DefaultSlots
	}
	if err := apillon.ValidateRequest(req); err != nil {
		return nil, err
	}
	var raw json.RawMessage
	if err := f.Client().Post(ctx, f.APIPrefix()+"/jobs", req, &raw); err != nil {
		return nil, fmt.Errorf("create job for cloud function %s: %w", f.UUID(), err)
	}
	job, err := decodeJob(f.Client(), raw)
	if err != nil {
		return nil, err
	}
	f.Jobs = append(f.Jobs, job)
	return job, nil
}

// Job is one deployment of a script on the processor network.
type Job struct {
	apillon.Entity `json:"-"`

	FunctionUUID string    `json:"functionUuid,omitempty"`
	Name         string    `json:"name"`
	ScriptCID    string    `json:"scriptCid"`
	Slots        int       `json:"slots"`
	Status       JobStatus `json:"jobStatus"`
	StartTime    time.Time `json:"startTime,omitzero"`
	EndTime      time.Time `json:"endTime,omitzero"`
}

func newJob(api *apillon.Client, uuid string) *Job {
	return &Job{Entity: apillon.NewEntity(api, uuid, prefix+"/jobs/"+uuid)}
}

func decodeJob(api *apillon.Client, raw json.RawMessage) (*Job, error) {
	id, err := apillon.DecodeID(raw, "jobUuid")
	if err != nil {
		return nil, err
	}
	j := newJob(api, id)
	if err := apillon.PopulateJSON(j, raw); err != nil {
		return nil, err
	}
	return j, nil
}

// MarshalJSON includes the job uuid.
func (j *Job) MarshalJSON() ([]byte, error) {
	type plain Job
	return apillon.MarshalEntity("jobUuid", j.UUID(), (*plain)(j))
}

// Delete stops and removes the job.
func (j *Job) Delete(ctx context.Context) error {
	if err := j.Client().Delete(ctx, j.APIPrefix(), nil); err != nil {
		return fmt.Errorf("delete job %s: %w", j.UUID(), err)
	}
	return nil
}
