package main

import (
	"github.com/spf13/cobra"

	"github.com/apillon/apillon-go"
	"github.com/apillon/apillon-go/clientcli"
	"github.com/apillon/apillon-go/logging"
	"github.com/apillon/apillon-go/storage"
	"github.com/apillon/apillon-go/upload"
)

func (a *app) newStorageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "storage",
		Short: "Manage storage buckets and their files",
	}
	cmd.AddCommand(
		a.newListBucketsCmd(),
		a.newCreateBucketCmd(),
		a.newListObjectsCmd(),
		a.newListFilesCmd(),
		a.newUploadCmd(),
		a.newGetFileCmd(),
		a.newDeleteFileCmd(),
		a.newListIPNSCmd(),
		a.newCreateIPNSCmd(),
		a.newPublishIPNSCmd(),
	)
	return cmd
}

func (a *app) newListBucketsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list-buckets",
		Short: "List the project's buckets",
		Args:  cobra.NoArgs,
	}
	page := addPageFlags(cmd)

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		client, err := a.client()
		if err != nil {
			return err
		}
		list, err := client.Storage.ListBuckets(cmd.Context(), &storage.BucketFilter{Pagination: page.pagination(cmd)})
		if err != nil {
			return err
		}
		return a.printTable(list, clientcli.BucketsTable(list))
	}
	return cmd
}

func (a *app) newCreateBucketCmd() *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "create-bucket <name>",
		Short: "Create a bucket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			bucket, err := client.Storage.CreateBucket(cmd.Context(), storage.CreateBucketRequest{
				Name:        args[0],
				Description: description,
			})
			if err != nil {
				return err
			}
			return a.printTable(bucket, clientcli.BucketsTable(&apillon.List[*storage.Bucket]{Items: []*storage.Bucket{bucket}}))
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "bucket description")
	return cmd
}

func (a *app) newListObjectsCmd() *cobra.Command {
	var (
		directory string
		deleted   bool
	)
	cmd := &cobra.Command{
		Use:   "list-objects <bucket-uuid>",
		Short: "List one level of a bucket's files and directories",
		Long: `List the files and directories of a bucket's root, or of the directory
given with --directory.

Examples:
  apillon storage list-objects 1e8a8e7b-0a29-4d38-9a17-4ba5c1b6a0c7
  apillon storage list-objects <bucket-uuid> --directory <directory-uuid>
  apillon storage list-objects <bucket-uuid> --deleted`,
		Args: cobra.ExactArgs(1),
	}
	page := addPageFlags(cmd)
	cmd.Flags().StringVar(&directory, "directory", "", "directory uuid")
	cmd.Flags().BoolVar(&deleted, "deleted", false, "list objects marked for deletion")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if err := clientcli.ValidateIDs(args...); err != nil {
			return err
		}
		client, err := a.client()
		if err != nil {
			return err
		}
		list, err := client.Storage.Bucket(args[0]).GetObjects(cmd.Context(), contentFilter(cmd, directory, deleted, page))
		if err != nil {
			return err
		}
		return a.printTable(list, clientcli.ObjectsTable(list))
	}
	return cmd
}

func contentFilter(cmd *cobra.Command, directory string, deleted bool, page *pageFlags) *storage.ContentFilter {
	filter := &storage.ContentFilter{Pagination: page.pagination(cmd)}
	if directory != "" {
		filter.DirectoryUUID = apillon.Ptr(directory)
	}
	if cmd.Flags().Changed("deleted") {
		filter.MarkedForDeletion = apillon.Ptr(deleted)
	}
	return filter
}

func (a *app) newListFilesCmd() *cobra.Command {
	var (
		recursive bool
		directory string
		status    string
		session   string
	)
	cmd := &cobra.Command{
		Use:   "list-files <bucket-uuid>",
		Short: "List the files of a bucket",
		Long: `List the files of a bucket.

By default this lists the bucket's flat file index, which can be filtered by
upload session or file status. With --recursive the directory tree is walked
instead and every file is listed with its full path.

Examples:
  apillon storage list-files <bucket-uuid> --status UPLOADED_TO_IPFS
  apillon storage list-files <bucket-uuid> --session <session-uuid>
  apillon storage list-files <bucket-uuid> --recursive --directory <directory-uuid>`,
		Args: cobra.ExactArgs(1),
	}
	page := addPageFlags(cmd)
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "walk the directory tree")
	cmd.Flags().StringVar(&directory, "directory", "", "directory uuid to start from (with --recursive)")
	cmd.Flags().StringVar(&status, "status", "", "file status name or value")
	cmd.Flags().StringVar(&session, "session", "", "upload session uuid")
	cmd.MarkFlagsMutuallyExclusive("recursive", "status")
	cmd.MarkFlagsMutuallyExclusive("recursive", "session")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if err := clientcli.ValidateIDs(args...); err != nil {
			return err
		}
		client, err := a.client()
		if err != nil {
			return err
		}
		bucket := client.Storage.Bucket(args[0])

		if recursive {
			files, err := bucket.GetFilesRecursive(cmd.Context(), contentFilter(cmd, directory, false, page))
			if err != nil {
				return err
			}
			return a.printTable(files, clientcli.FilesTable(files, len(files)))
		}

		filter := &storage.FileFilter{Pagination: page.pagination(cmd)}
		if status != "" {
			s, err := storage.ParseFileStatus(status)
			if err != nil {
				return err
			}
			filter.FileStatus = &s
		}
		if session != "" {
			filter.SessionUUID = apillon.Ptr(session)
		}
		list, err := bucket.GetFiles(cmd.Context(), filter)
		if err != nil {
			return err
		}
		return a.printTable(list, clientcli.FilesTable(list.Items, list.Total))
	}
	return cmd
}

// uploadFlags are shared by storage upload and hosting upload.
type uploadFlags struct {
	wrap        bool
	path        string
	await       bool
	matchByName bool
}

func addUploadFlags(cmd *cobra.Command) *uploadFlags {
	f := &uploadFlags{}
	cmd.Flags().BoolVarP(&f.wrap, "wrap", "w", false, "wrap the files into one IPFS directory")
	cmd.Flags().StringVar(&f.path, "path", "", "bucket directory the files are placed in")
	cmd.Flags().BoolVar(&f.await, "await", false, "wait until every file has a CID")
	cmd.Flags().BoolVar(&f.matchByName, "match-by-name", false, "pair upload targets by file name only")
	return f
}

func (f *uploadFlags) options() upload.Options {
	opts := upload.Options{
		WrapWithDirectory: f.wrap,
		DirectoryPath:     f.path,
		AwaitCID:          f.await,
	}
	if f.matchByName {
		opts.Matching = upload.MatchByFileName
	}
	return opts
}

func (a *app) newUploadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload <bucket-uuid> <folder>",
		Short: "Upload a local folder to a bucket",
		Long: `Upload every file under a local folder to a bucket in one upload session.

Files keep their path relative to the folder. With --wrap the session's files
are wrapped into a single IPFS directory placed at --path.

Examples:
  apillon storage upload <bucket-uuid> ./dist
  apillon storage upload <bucket-uuid> ./images --wrap --path images
  apillon storage upload <bucket-uuid> ./docs --await --json`,
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

		timer := logging.Start(cmd.Context(), a.logger, "upload")
		result, err := client.Storage.Bucket(args[0]).UploadFromFolder(cmd.Context(), args[1], flags.options())
		if err != nil {
			return err
		}
		timer.Stop("files", len(result.Files), "session", result.SessionUUID)

		return a.formatter().FormatUpload(a.stdout, result)
	}
	return cmd
}

func (a *app) newGetFileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get-file <bucket-uuid> <file-uuid>",
		Short: "Show a file's details",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := clientcli.ValidateIDs(args...); err != nil {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}
			file, err := client.Storage.Bucket(args[0]).File(args[1]).Get(cmd.Context())
			if err != nil {
				return err
			}
			return a.printDetails(file, clientcli.FileDetails(file))
		},
	}
}

func (a *app) newDeleteFileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-file <bucket-uuid> <file-uuid> [file-uuid...]",
		Short: "Delete files from a bucket",
		Long: `Delete one or more files from a bucket.

Every file is attempted; the command exits with status 1 if any delete failed.

Examples:
  apillon storage delete-file <bucket-uuid> <file-uuid>
  apillon storage delete-file <bucket-uuid> <file-uuid> <file-uuid> -q`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := clientcli.ValidateIDs(args...); err != nil {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}

			results, err := client.DeleteFiles(cmd.Context(), args[0], args[1:])
			if err != nil {
				return err
			}
			if err := a.formatter().FormatDelete(a.stdout, results); err != nil {
				return err
			}

			if clientcli.HasDeleteErrors(results) {
				return &exitError{code: 1}
			}
			return nil
		},
	}
}

func (a *app) newListIPNSCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list-ipns <bucket-uuid>",
		Short: "List the IPNS records of a bucket",
		Args:  cobra.ExactArgs(1),
	}
	page := addPageFlags(cmd)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if err := clientcli.ValidateIDs(args...); err != nil {
			return err
		}
		client, err := a.client()
		if err != nil {
			return err
		}
		list, err := client.Storage.Bucket(args[0]).IPNS().List(cmd.Context(), &storage.IPNSFilter{Pagination: page.pagination(cmd)})
		if err != nil {
			return err
		}
		return a.printTable(list, clientcli.IPNSTable(list))
	}
	return cmd
}

func (a *app) newCreateIPNSCmd() *cobra.Command {
	var (
		description string
		cid         string
	)
	cmd := &cobra.Command{
		Use:   "create-ipns <bucket-uuid> <name>",
		Short: "Create an IPNS record, optionally publishing a CID right away",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := clientcli.ValidateIDs(args[0]); err != nil {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}
			record, err := client.Storage.Bucket(args[0]).IPNS().Create(cmd.Context(), storage.CreateIPNSRequest{
				Name:        args[1],
				Description: description,
				CID:         cid,
			})
			if err != nil {
				return err
			}
			return a.printDetails(record, clientcli.IPNSDetails(record))
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "record description")
	cmd.Flags().StringVar(&cid, "cid", "", "CID to publish")
	return cmd
}

func (a *app) newPublishIPNSCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "publish-ipns <bucket-uuid> <ipns-uuid> <cid>",
		Short: "Point an IPNS record at a CID",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := clientcli.ValidateIDs(args[0], args[1]); err != nil {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}
			record, err := client.Storage.Bucket(args[0]).IPNS().IPNS(args[1]).Publish(cmd.Context(), args[2])
			if err != nil {
				return err
			}
			return a.printDetails(record, clientcli.IPNSDetails(record))
		},
	}
}
