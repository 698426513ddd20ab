package hosting

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/apillon/apillon-go"
)

// DeployToEnvironment selects where a deployment goes.
type DeployToEnvironment int

const (
	ToStaging            DeployToEnvironment = 1
	StagingToProduction  DeployToEnvironment = 2
	DirectlyToProduction DeployToEnvironment = 3
)

func (e DeployToEnvironment) String() string {
	switch e {
	case ToStaging:
		return "TO_STAGING"
	case StagingToProduction:
		return "STAGING_TO_PRODUCTION"
	case DirectlyToProduction:
		return "DIRECTLY_TO_PRODUCTION"
	default:
		return strconv.Itoa(int(e))
	}
}

// ParseEnvironment accepts the symbolic name (case-insensitive) or the numeric value.
func ParseEnvironment(s string) (DeployToEnvironment, error) {
	for _, e := range []DeployToEnvironment{ToStaging, StagingToProduction, DirectlyToProduction} {
		if strings.EqualFold(e.String(), s) || strconv.Itoa(int(e)) == s {
			return e, nil
		}
	}
	return 0, fmt.Errorf("unknown environment %q: %w", s, apillon.ErrInvalidInput)
}

// DeploymentStatus is the progress of a deployment.
type DeploymentStatus int

const (
	DeploymentInitiated  DeploymentStatus = 0
	DeploymentInProcess  DeploymentStatus = 1
	DeploymentSuccessful DeploymentStatus = 10
	DeploymentFailed     DeploymentStatus = 100
)

func (s DeploymentStatus) String() string {
	switch s {
	case DeploymentInitiated:
		return "INITIATED"
	case DeploymentInProcess:
		return "IN_PROCESS"
	case DeploymentSuccessful:
		return "SUCCESSFUL"
	case DeploymentFailed:
		return "FAILED"
	default:
		return strconv.Itoa(int(s))
	}
}

// Done reports whether the deployment reached a final state.
func (s DeploymentStatus) Done() bool {
	return s == DeploymentSuccessful || s == DeploymentFailed
}

// ParseDeploymentStatus accepts the symbolic name (case-insensitive) or the numeric value.
func ParseDeploymentStatus(s string) (DeploymentStatus, error) {
	for _, st := range []DeploymentStatus{DeploymentInitiated, DeploymentInProcess, DeploymentSuccessful, DeploymentFailed} {
		if strings.EqualFold(st.String(), s) || strconv.Itoa(int(st)) == s {
			return st, nil
		}
	}
	return 0, fmt.Errorf("unknown deployment status %q: %w", s, apillon.ErrInvalidInput)
}

// WebsiteFilter filters ListWebsites.
type WebsiteFilter struct {
	apillon.Pagination
}

// DeploymentFilter filters ListDeployments.
type DeploymentFilter struct {
	Environment *DeployToEnvironment `query:"environment"`
	Status      *DeploymentStatus    `query:"deploymentStatus"`
	apillon.Pagination
}

// deploymentSerializers sends the deployment enums by name.
var deploymentSerializers = apillon.Serializers{
	"environment":      apillon.EnumName,
	"deploymentStatus": apillon.EnumName,
}
