// Package bridge lets a file-oriented analysis engine operate on
// documents written in a source format it cannot parse natively. Each
// document is converted to a generated script representation; the bridge
// caches those snapshots, maintains one engine instance per project
// configuration, and translates every engine result back into the
// coordinate space of the original document.
//
// The package has four cooperating parts:
//
//   - SnapshotCache: per-document generated representation (cache.go)
//   - Mapper: bidirectional position mapping (mapper.go, position.go)
//   - Registry: per-project engine lifecycle (registry.go, project.go)
//   - Translator: result rewriting into original coordinates (translate.go)
//
// Session ties them together and is the surface feature handlers use:
// one UpdateDocument call and one Translator call per request.
package bridge
