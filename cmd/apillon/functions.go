package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/apillon/apillon-go"
	"github.com/apillon/apillon-go/clientcli"
	"github.com/apillon/apillon-go/cloudfunctions"
)

func (a *app) newCloudFunctionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "cloud-functions",
		Aliases: []string{"functions", "fn"},
		Short:   "Manage cloud functions and their jobs",
	}
	cmd.AddCommand(
		a.newListFunctionsCmd(),
		a.newCreateFunctionCmd(),
		a.newGetFunctionCmd(),
		a.newCreateJobCmd(),
		a.newSetEnvironmentCmd(),
		a.newDeleteJobCmd(),
	)
	return cmd
}

func (a *app) newListFunctionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the project's cloud functions",
		Args:  cobra.NoArgs,
	}
	page := addPageFlags(cmd)

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		client, err := a.client()
		if err != nil {
			return err
		}
		list, err := client.CloudFunctions.ListCloudFunctions(cmd.Context(), &cloudfunctions.Filter{Pagination: page.pagination(cmd)})
		if err != nil {
			return err
		}
		return a.printTable(list, clientcli.CloudFunctionsTable(list))
	}
	return cmd
}

func (a *app) newCreateFunctionCmd() *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a cloud function",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			fn, err := client.CloudFunctions.CreateCloudFunction(cmd.Context(), cloudfunctions.CreateRequest{
				Name:        args[0],
				Description: description,
			})
			if err != nil {
				return err
			}
			return a.printDetails(fn, clientcli.CloudFunctionDetails(fn))
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "function description")
	return cmd
}

func (a *app) newGetFunctionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <function-uuid>",
		Short: "Show a cloud function with its jobs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := clientcli.ValidateIDs(args...); err != nil {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}
			fn, err := client.CloudFunctions.CloudFunction(args[0]).Get(cmd.Context())
			if err != nil {
				return err
			}
			return a.printDetails(fn, clientcli.CloudFunctionDetails(fn))
		},
	}
}

func (a *app) newCreateJobCmd() *cobra.Command {
	var slots int
	cmd := &cobra.Command{
		Use:   "create-job <function-uuid> <name> <script-cid>",
		Short: "Deploy a script as a job of a cloud function",
		Long: `Deploy a script, referenced by the CID of a file uploaded to the function's
bucket, as a new job.

Examples:
  apillon cloud-functions create-job <function-uuid> worker bafybeih... --slots 2`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := clientcli.ValidateIDs(args[0]); err != nil {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}
			job, err := client.CloudFunctions.CloudFunction(args[0]).CreateJob(cmd.Context(), cloudfunctions.CreateJobRequest{
				Name:      args[1],
				ScriptCID: args[2],
				Slots:     slots,
			})
			if err != nil {
				return err
			}
			return a.printDetails(job, clientcli.JobDetails(job))
		},
	}
	cmd.Flags().IntVar(&slots, "slots", cloudfunctions.DefaultSlots, "number of processors")
	return cmd
}

func (a *app) newSetEnvironmentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-environment <function-uuid> [KEY=VALUE...]",
		Short: "Replace a cloud function's environment variables",
		Long: `Replace the environment variables shared by a function's jobs.
Passing no variables clears them.

Examples:
  apillon cloud-functions set-environment <function-uuid> API_URL=https://example.com TOKEN=abc`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := clientcli.ValidateIDs(args[0]); err != nil {
				return err
			}
			vars, err := parseEnvVars(args[1:])
			if err != nil {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}
			if err := client.CloudFunctions.CloudFunction(args[0]).SetEnvironment(cmd.Context(), vars); err != nil {
				return err
			}
			return a.printMessage(fmt.Sprintf("Environment updated (%d variable(s)).", len(vars)), map[string]any{"variables": vars})
		},
	}
}

func parseEnvVars(args []string) ([]cloudfunctions.EnvVar, error) {
	vars := make([]cloudfunctions.EnvVar, 0, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid variable %q, expected KEY=VALUE: %w", arg, apillon.ErrInvalidInput)
		}
		vars = append(vars, cloudfunctions.EnvVar{Key: key, Value: value})
	}
	return vars, nil
}

func (a *app) newDeleteJobCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-job <job-uuid>",
		Short: "Stop and remove a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := clientcli.ValidateIDs(args...); err != nil {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}
			if err := client.CloudFunctions.Job(args[0]).Delete(cmd.Context()); err != nil {
				return err
			}
			return a.printMessage(fmt.Sprintf("Job %s deleted.", args[0]), map[string]any{"jobUuid": args[0], "deleted": true})
		},
	}
}
