// Package connectors holds the message sources ingestion reads from.
//
//   - export: a channel archive export on disk, with fsnotify-based watching
//   - github: issue and pull request comments of a repository
//
// Each implements driven.MessageSource; export also implements
// driven.ChangeNotifier.
package connectors
