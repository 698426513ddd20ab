package clientcli

import (
	"strconv"
	"time"

	"github.com/apillon/apillon-go"
	"github.com/apillon/apillon-go/cloudfunctions"
	"github.com/apillon/apillon-go/hosting"
	"github.com/apillon/apillon-go/nft"
	"github.com/apillon/apillon-go/storage"
)

const timeLayout = "2006-01-02 15:04:05"

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(timeLayout)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// BucketsTable renders a bucket list.
func BucketsTable(list *apillon.List[*storage.Bucket]) *Table {
	t := &Table{Kind: "bucket(s)", Columns: []string{"UUID", "NAME", "SIZE", "MAX SIZE", "CREATED"}, Total: list.Total}
	for _, b := range list.Items {
		t.Rows = append(t.Rows, []string{b.UUID(), b.Name, formatSize(b.Size), formatSize(b.MaxSize), formatTime(b.CreateTime)})
	}
	return t
}

// ObjectsTable renders one level of bucket content.
func ObjectsTable(list *apillon.List[storage.Object]) *Table {
	t := &Table{Kind: "object(s)", Columns: []string{"UUID", "TYPE", "NAME", "CID", "SIZE"}, Total: list.Total}
	for _, o := range list.Items {
		switch v := o.(type) {
		case *storage.Directory:
			t.Rows = append(t.Rows, []string{v.UUID(), v.Kind().String(), v.Name, orDash(v.CID), "-"})
		case *storage.File:
			t.Rows = append(t.Rows, []string{v.UUID(), v.Kind().String(), v.Name, orDash(v.CID), formatSize(v.Size)})
		}
	}
	return t
}

// FilesTable renders a flat file listing.
func FilesTable(files []*storage.File, total int) *Table {
	t := &Table{Kind: "file(s)", Columns: []string{"UUID", "PATH", "STATUS", "SIZE", "CID"}, Total: total}
	for _, f := range files {
		t.Rows = append(t.Rows, []string{
			f.UUID(),
			apillon.JoinVirtualPath(f.Path, f.Name),
			f.Status.String(),
			formatSize(f.Size),
			orDash(f.CID),
		})
	}
	return t
}

// FileDetails renders one file.
func FileDetails(f *storage.File) *Details {
	d := &Details{}
	d.add("UUID", f.UUID())
	d.add("Bucket", f.BucketUUID)
	d.add("Name", f.Name)
	d.add("Path", orDash(f.Path))
	d.add("Status", f.Status.String())
	d.add("Size", formatSize(f.Size))
	d.add("Content type", orDash(f.ContentType))
	d.add("CID", orDash(f.CID))
	d.add("CIDv1", orDash(f.CIDv1))
	d.add("Link", orDash(f.Link))
	return d
}

// IPNSTable renders the IPNS records of a bucket.
func IPNSTable(list *apillon.List[*storage.IPNS]) *Table {
	t := &Table{Kind: "IPNS record(s)", Columns: []string{"UUID", "NAME", "IPNS NAME", "VALUE"}, Total: list.Total}
	for _, r := range list.Items {
		t.Rows = append(t.Rows, []string{r.UUID(), r.Name, orDash(r.IPNSName), orDash(r.IPNSValue)})
	}
	return t
}

// IPNSDetails renders one IPNS record.
func IPNSDetails(r *storage.IPNS) *Details {
	d := &Details{}
	d.add("UUID", r.UUID())
	d.add("Name", r.Name)
	d.add("IPNS name", orDash(r.IPNSName))
	d.add("Value", orDash(r.IPNSValue))
	d.add("Link", orDash(r.Link))
	return d
}

// WebsitesTable renders a website list.
func WebsitesTable(list *apillon.List[*hosting.Website]) *Table {
	t := &Table{Kind: "website(s)", Columns: []string{"UUID", "NAME", "DOMAIN", "BUCKET"}, Total: list.Total}
	for _, w := range list.Items {
		t.Rows = append(t.Rows, []string{w.UUID(), w.Name, orDash(w.Domain), orDash(w.BucketUUID)})
	}
	return t
}

// WebsiteDetails renders one website.
func WebsiteDetails(w *hosting.Website) *Details {
	d := &Details{}
	d.add("UUID", w.UUID())
	d.add("Name", w.Name)
	d.add("Description", orDash(w.Description))
	d.add("Domain", orDash(w.Domain))
	d.add("Bucket", orDash(w.BucketUUID))
	d.add("IPNS staging", orDash(w.IPNSStaging))
	d.add("IPNS production", orDash(w.IPNSProduction))
	return d
}

// DeploymentsTable renders a deployment list.
func DeploymentsTable(list *apillon.List[*hosting.Deployment]) *Table {
	t := &Table{Kind: "deployment(s)", Columns: []string{"UUID", "NUMBER", "ENVIRONMENT", "STATUS", "CID"}, Total: list.Total}
	for _, dp := range list.Items {
		t.Rows = append(t.Rows, []string{
			dp.UUID(),
			strconv.Itoa(dp.Number),
			dp.Environment.String(),
			dp.Status.String(),
			orDash(dp.CID),
		})
	}
	return t
}

// DeploymentDetails renders one deployment.
func DeploymentDetails(dp *hosting.Deployment) *Details {
	d := &Details{}
	d.add("UUID", dp.UUID())
	d.add("Website", dp.WebsiteUUID)
	d.add("Number", strconv.Itoa(dp.Number))
	d.add("Environment", dp.Environment.String())
	d.add("Status", dp.Status.String())
	d.add("Size", formatSize(dp.Size))
	d.add("CID", orDash(dp.CID))
	d.add("CIDv1", orDash(dp.CIDv1))
	return d
}

// CollectionsTable renders a collection list.
func CollectionsTable(list *apillon.List[*nft.Collection]) *Table {
	t := &Table{Kind: "collection(s)", Columns: []string{"UUID", "NAME", "SYMBOL", "CHAIN", "STATUS", "CONTRACT"}, Total: list.Total}
	for _, c := range list.Items {
		t.Rows = append(t.Rows, []string{
			c.UUID(),
			c.Name,
			c.Symbol,
			strconv.Itoa(c.Chain),
			c.Status.String(),
			orDash(c.ContractAddress),
		})
	}
	return t
}

// CollectionDetails renders one collection.
func CollectionDetails(c *nft.Collection) *Details {
	d := &Details{}
	d.add("UUID", c.UUID())
	d.add("Name", c.Name)
	d.add("Symbol", c.Symbol)
	d.add("Chain", strconv.Itoa(c.Chain))
	d.add("Type", c.CollectionType.String())
	d.add("Status", c.Status.String())
	d.add("Max supply", strconv.Itoa(c.MaxSupply))
	d.add("Base URI", orDash(c.BaseURI))
	d.add("Revokable", strconv.FormatBool(c.IsRevokable))
	d.add("Soulbound", strconv.FormatBool(c.IsSoulbound))
	if c.Drop {
		d.add("Drop price", c.DropPrice.String())
		d.add("Drop reserve", strconv.Itoa(c.DropReserve))
		d.add("Drop start", formatTime(time.Unix(c.DropStart, 0).UTC()))
	}
	d.add("Contract", orDash(c.ContractAddress))
	d.add("Deployer", orDash(c.DeployerAddress))
	d.add("Transaction", orDash(c.TransactionHash))
	return d
}

// TransactionsTable renders a collection's transactions.
func TransactionsTable(list *apillon.List[nft.Transaction]) *Table {
	t := &Table{Kind: "transaction(s)", Columns: []string{"ID", "TYPE", "STATUS", "HASH", "UPDATED"}, Total: list.Total}
	for _, tx := range list.Items {
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(tx.ID),
			tx.TransactionType.String(),
			tx.TransactionStatus.String(),
			orDash(tx.TransactionHash),
			formatTime(tx.UpdateTime),
		})
	}
	return t
}

// CloudFunctionsTable renders a cloud function list.
func CloudFunctionsTable(list *apillon.List[*cloudfunctions.CloudFunction]) *Table {
	t := &Table{Kind: "cloud function(s)", Columns: []string{"UUID", "NAME", "GATEWAY"}, Total: list.Total}
	for _, f := range list.Items {
		t.Rows = append(t.Rows, []string{f.UUID(), f.Name, orDash(f.GatewayURL)})
	}
	return t
}

// CloudFunctionDetails renders one function with its jobs.
func CloudFunctionDetails(f *cloudfunctions.CloudFunction) *Details {
	d := &Details{}
	d.add("UUID", f.UUID())
	d.add("Name", f.Name)
	d.add("Description", orDash(f.Description))
	d.add("Bucket", orDash(f.BucketUUID))
	d.add("Gateway", orDash(f.GatewayURL))

	jobs := &Table{Kind: "job(s)", Columns: []string{"JOB UUID", "NAME", "STATUS", "SLOTS", "SCRIPT CID"}}
	for _, j := range f.Jobs {
		jobs.Rows = append(jobs.Rows, []string{j.UUID(), j.Name, j.Status.String(), strconv.Itoa(j.Slots), j.ScriptCID})
	}
	d.Tables = append(d.Tables, jobs)
	return d
}

// JobDetails renders one job.
func JobDetails(j *cloudfunctions.Job) *Details {
	d := &Details{}
	d.add("UUID", j.UUID())
	d.add("Function", orDash(j.FunctionUUID))
	d.add("Name", j.Name)
	d.add("Status", j.Status.String())
	d.add("Slots", strconv.Itoa(j.Slots))
	d.add("Script CID", j.ScriptCID)
	return d
}
