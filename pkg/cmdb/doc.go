// Package cmdb retrieves server records from a ServiceNow-style CMDB table API.
//
// The package is the retrieval collaborator of the inventory pipeline: it
// issues one query constrained to live, installed servers of a given OS and
// returns the records as HostRecord values. Any failure is reported as a
// structured error and is meant to abort the run; nothing is retried.
//
// # Query
//
// Records are read from:
//
//	GET https://<instance>.service-now.com/api/now/table/cmdb_ci_server
//	    ?sysparm_query=os=<os>^install_status=1^state=Live
//	    &sysparm_limit=<limit>
//
// using HTTP basic authentication. The response body is expected to be
// {"result": [ {...}, ... ]}.
//
// # Credentials
//
// Credentials come from the SNOW_USER and SNOW_PASSWORD environment
// variables, or from a Kubernetes Secret holding "username" and "password"
// keys (see CredentialsFromSecret).
package cmdb
