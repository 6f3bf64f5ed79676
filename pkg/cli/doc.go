// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cli implements the command-line interface of patchinv, a dynamic
// inventory for patch orchestration built from CMDB patch groups.
//
// # Overview
//
// patchinv queries the CMDB for live, installed servers of one OS, drops
// denylisted and ungrouped hosts, drops hosts whose names do not resolve, and
// prints an inventory grouped by the CMDB patch group:
//
//	patchinv --list
//	patchinv --debug --limit 500 --os-filter "Linux Red Hat"
//	patchinv --config /etc/patchinv.yaml --credentials-secret ops/snow-creds
//
// The command follows the orchestrator's dynamic inventory protocol:
// --list (the default) prints the full inventory and --host NAME prints an
// empty variable map, since this inventory carries no host variables.
//
// # Output
//
// The inventory document is the only thing written to stdout:
//
//	{
//	  "all": { "hosts": ["web01", "db01"] },
//	  "webservers": { "hosts": ["web01"] },
//	  "dbteam": { "hosts": ["db01"] }
//	}
//
// Nothing is printed unless the whole pipeline succeeded.
//
// # Service Mode
//
// The serve subcommand exposes the same inventory over HTTP, rebuilding it
// at most once per cache TTL:
//
//	patchinv --config /etc/patchinv.yaml serve --port 8080 --cache-ttl 10m
//	curl -s localhost:8080/v1/inventory?format=yaml
//
// # Flags
//
//	--debug                 Enable diagnostic logging on stderr
//	--limit                 Maximum number of CMDB records (default: 15000)
//	--os-filter             CMDB OS value to query (default: Linux Red Hat)
//	--config, -c            YAML configuration file
//	--env-file              dotenv file loaded before reading the environment
//	--format, -t            Output format: json, yaml (default: json)
//	--domain                Domain appended to short hostnames
//	--group-field           CMDB attribute used for grouping
//	--workers               Concurrent hostname lookups
//	--lookup-timeout        Timeout of a single lookup
//	--credentials-secret    Kubernetes Secret (namespace/name) holding CMDB credentials
//	--kubeconfig            Path to kubeconfig used with --credentials-secret
//	--metrics-textfile      Write run metrics for the node_exporter textfile collector
//	--log-json              Output logs in JSON format
//
// # Environment Variables
//
//	SNOW_INSTANCE          CMDB instance name (https://<instance>.service-now.com)
//	SNOW_BASE_URL          CMDB base URL, overrides SNOW_INSTANCE
//	SNOW_USER              CMDB username
//	SNOW_PASSWORD          CMDB password
//	PATCHINV_*             See pkg/config
//	LOG_LEVEL              Set logging verbosity (debug, info, warn, error)
//	KUBECONFIG             Path to kubeconfig file
//	PORT                   Listen port of serve
//
// # Exit Codes
//
//	0  Success
//	1  General error (invalid arguments, CMDB retrieval failure)
//	2  Run interrupted by SIGINT or SIGTERM
package cli
