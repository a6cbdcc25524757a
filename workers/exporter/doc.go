/*
Package exporter exports the general attributes of financial instruments
published by ESMA in the FIRDS DLTINS files.

One run performs five stages in order:

	index_fetch       query the FIRDS file index (Solr, XML response)
	locate_reference  pick the first index entry whose file_type is DLTINS
	archive_fetch     download the ZIP archive and select the document in it
	extract_fields    read every FinInstrmGnlAttrbts element (auth.036.001.02)
	sink              write the CSV to the workspace and upload it

A failed stage stops the run; later stages are reported as skipped and the
process exits non-zero. Every run produces a Report with a run ID and the
outcome of each stage.

Architecture

	├── cmd/                        # cobra entry point: run, lambda
	├── internal/
	│   ├── domain/                 # entities, payload, errors, ports
	│   │   └── service/            # index, archive, extract and CSV logic
	│   ├── usecase/                # ExportPipeline and stage reporting
	│   └── infrastructure/
	│       └── adapters/http/      # HTTP client with retries
	└── mocks/                      # testify mocks for the ports

Shared infrastructure (configuration, zap logging, Prometheus/CloudWatch
metrics, S3 and filesystem storage, CLI and Lambda runtimes) lives under
firds/shared.

Output

The CSV has a fixed header:

	FinInstrmGnlAttrbts.Id,FinInstrmGnlAttrbts.FullNm,FinInstrmGnlAttrbts.ClssfctnTp,FinInstrmGnlAttrbts.CmmdtyDerivInd,FinInstrmGnlAttrbts.NtnlCcy,Issr

An instrument without an Issr element gets the literal value False in the
last column (EXTRACT_MISSING_ISSUER).

Usage

	firds-exporter run --from 2021-01-17 --to 2021-01-19
	firds-exporter run --skip-upload --workspace ./out
	firds-exporter lambda

Configuration is read from the environment and .env files; see
firds/shared/config for every setting.
*/
package exporter
