// Package clientcli holds the building blocks of the apillon command line:
// stored profiles, a client bundling every service module, and output
// formatters.
//
// # Basic Usage
//
//	client, err := clientcli.New(&apillon.Config{
//		APIKey:    "your-api-key",
//		APISecret: "your-api-secret",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	buckets, err := client.Storage.ListBuckets(ctx, nil)
//
// # Profile Configuration
//
// Profiles store the credentials of several projects in ~/.apillon/config.yaml:
//
//	configFile, err := clientcli.LoadConfigFile(clientcli.DefaultConfigPath())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	profile, err := configFile.GetProfile("production")
//
// # Output Formatting
//
// Use formatters for human-readable or JSON output:
//
//	formatter := clientcli.NewFormatter(jsonOutput, quiet)
//	formatter.FormatTable(os.Stdout, buckets, clientcli.BucketsTable(buckets))
package clientcli
