package futon

// Version is the current version of this package.
const Version = "0.1.0"

// Known vendor strings
const (
	VendorCouchDB  = "The Apache Software Foundation"
	VendorCloudant = "IBM Cloudant"
)

// The view endpoints served by the server itself, rather than by a design
// document.
const (
	ViewAllDocs    = "_all_docs"
	ViewDesignDocs = "_design_docs"
	ViewLocalDocs  = "_local_docs"
)

const userAgent = "futon/" + Version
