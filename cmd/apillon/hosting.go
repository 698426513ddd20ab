package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/apillon/apillon-go"
	"github.com/apillon/apillon-go/clientcli"
	"github.com/apillon/apillon-go/hosting"
	"github.com/apillon/apillon-go/logging"
)

func (a *app) newHostingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hosting",
		Short: "Manage hosted websites and their deployments",
	}
	cmd.AddCommand(
		a.newListWebsitesCmd(),
		a.newGetWebsiteCmd(),
		a.newCreateWebsiteCmd(),
		a.newUploadWebsiteCmd(),
		a.newDeployWebsiteCmd(),
		a.newListDeploymentsCmd(),
		a.newGetDeploymentCmd(),
	)
	return cmd
}

func (a *app) newListWebsitesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list-websites",
		Short: "List the project's websites",
		Args:  cobra.NoArgs,
	}
	page := addPageFlags(cmd)

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		client, err := a.client()
		if err != nil {
			return err
		}
		list, err := client.Hosting.ListWebsites(cmd.Context(), &hosting.WebsiteFilter{Pagination: page.pagination(cmd)})
		if err != nil {
			return err
		}
		return a.printTable(list, clientcli.WebsitesTable(list))
	}
	return cmd
}

func (a *app) newGetWebsiteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get-website <website-uuid>",
		Short: "Show a website's details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := clientcli.ValidateIDs(args...); err != nil {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}
			website, err := client.Hosting.Website(args[0]).Get(cmd.Context())
			if err != nil {
				return err
			}
			return a.printDetails(website, clientcli.WebsiteDetails(website))
		},
	}
}

func (a *app) newCreateWebsiteCmd() *cobra.Command {
	var description, domain string
	cmd := &cobra.Command{
		Use:   "create-website <name>",
		Short: "Create a website",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			website, err := client.Hosting.CreateWebsite(cmd.Context(), hosting.CreateWebsiteRequest{
				Name:        args[0],
				Description: description,
				Domain:      domain,
			})
			if err != nil {
				return err
			}
			return a.printDetails(website, clientcli.WebsiteDetails(website))
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "website description")
	cmd.Flags().StringVar(&domain, "domain", "", "custom domain")
	return cmd
}

func (a *app) newUploadWebsiteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "upload-website <website-uuid> <folder>",
		Aliases: []string{"upload"},
		Short:   "Upload a local folder to a website's staging bucket",
		Long: `Upload the site under a local folder. The files are not served until the
website is deployed.

Examples:
  apillon hosting upload-website <website-uuid> ./dist
  apillon hosting upload-website <website-uuid> ./dist && apillon hosting deploy-website <website-uuid> --wait`,
		Args: cobra.ExactArgs(2),
	}
	flags := addUploadFlags(cmd)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if err := clientcli.ValidateIDs(args[0]); err != nil {
			return err
		}
		client, err := a.client()
		if err != nil {
			return err
		}

		timer := logging.Start(cmd.Context(), a.logger, "website upload")
		result, err := client.Hosting.Website(args[0]).UploadFromFolder(cmd.Context(), args[1], flags.options())
		if err != nil {
			return err
		}
		timer.Stop("files", len(result.Files), "session", result.SessionUUID)

		return a.formatter().FormatUpload(a.stdout, result)
	}
	return cmd
}

func (a *app) newDeployWebsiteCmd() *cobra.Command {
	var (
		env      string
		wait     bool
		interval time.Duration
	)
	cmd := &cobra.Command{
		Use:     "deploy-website <website-uuid>",
		Aliases: []string{"deploy"},
		Short:   "Deploy a website",
		Long: `Start a deployment of a website.

Environments:
  TO_STAGING              (1) uploaded files to staging
  STAGING_TO_PRODUCTION   (2) staging to production
  DIRECTLY_TO_PRODUCTION  (3) uploaded files straight to production

Examples:
  apillon hosting deploy-website <website-uuid>
  apillon hosting deploy-website <website-uuid> --env STAGING_TO_PRODUCTION --wait`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := clientcli.ValidateIDs(args...); err != nil {
				return err
			}
			environment, err := hosting.ParseEnvironment(env)
			if err != nil {
				return err
			}
			if wait && interval <= 0 {
				return fmt.Errorf("--interval must be positive, got %s: %w", interval, apillon.ErrInvalidInput)
			}
			client, err := a.client()
			if err != nil {
				return err
			}

			deployment, err := client.Hosting.Website(args[0]).Deploy(cmd.Context(), environment)
			if err != nil {
				return err
			}
			if wait {
				timer := logging.Start(cmd.Context(), a.logger, "deployment")
				if deployment, err = deployment.Wait(cmd.Context(), interval); err != nil {
					return err
				}
				timer.Stop("status", deployment.Status)
			}
			return a.printDetails(deployment, clientcli.DeploymentDetails(deployment))
		},
	}
	cmd.Flags().StringVarP(&env, "env", "e", hosting.ToStaging.String(), "deployment environment")
	cmd.Flags().BoolVar(&wait, "wait", false, "wait until the deployment finishes")
	cmd.Flags().DurationVar(&interval, "interval", 5*time.Second, "poll interval with --wait")
	return cmd
}

func (a *app) newListDeploymentsCmd() *cobra.Command {
	var env, status string
	cmd := &cobra.Command{
		Use:   "list-deployments <website-uuid>",
		Short: "List a website's deployments",
		Args:  cobra.ExactArgs(1),
	}
	page := addPageFlags(cmd)
	cmd.Flags().StringVarP(&env, "env", "e", "", "filter by environment")
	cmd.Flags().StringVar(&status, "status", "", "filter by deployment status")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if err := clientcli.ValidateIDs(args...); err != nil {
			return err
		}
		filter := &hosting.DeploymentFilter{Pagination: page.pagination(cmd)}
		if env != "" {
			e, err := hosting.ParseEnvironment(env)
			if err != nil {
				return err
			}
			filter.Environment = apillon.Ptr(e)
		}
		if status != "" {
			s, err := hosting.ParseDeploymentStatus(status)
			if err != nil {
				return err
			}
			filter.Status = apillon.Ptr(s)
		}

		client, err := a.client()
		if err != nil {
			return err
		}
		list, err := client.Hosting.Website(args[0]).ListDeployments(cmd.Context(), filter)
		if err != nil {
			return err
		}
		return a.printTable(list, clientcli.DeploymentsTable(list))
	}
	return cmd
}

func (a *app) newGetDeploymentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get-deployment <website-uuid> <deployment-uuid>",
		Short: "Show a deployment's details",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := clientcli.ValidateIDs(args...); err != nil {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}
			deployment, err := client.Hosting.Website(args[0]).Deployment(args[1]).Get(cmd.Context())
			if err != nil {
				return err
			}
			return a.printDetails(deployment, clientcli.DeploymentDetails(deployment))
		},
	}
}
