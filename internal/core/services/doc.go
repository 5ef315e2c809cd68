// Package services implements the driving ports: retrieval, answering,
// scope, ingestion, documents and settings. Services depend only on
// domain types and driven ports and never import adapters.
package services
