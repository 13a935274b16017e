// Package decker assembles slide-deck documents from reusable topic
// fragments.
//
// An outline (defined declaratively in YAML or as an RST include index)
// names the topics a deck covers; decker resolves each topic to its
// fragment file, concatenates them in outline order and writes the
// composed document.  Pluggable service layers cover:
//
//   - dao       – outline and fragment loading with caching
//   - composer  – deterministic section concatenation
//   - builder   – end-to-end build orchestration
//   - verify    – drift detection between written and recomposed output
//   - publisher – versioned publication with latest pointer and pack
//
// Decker is designed to be embedded in host applications.  End-users
// typically interact via the high-level Service façade exposed by the
// root package:
//
//	srv := decker.New()
//	rt  := srv.Runtime()
//	build, _ := rt.Build(ctx, "decks/python-basics.yaml")
//	fmt.Println(build.OutputURL)
//
// For more details see the README and individual sub-packages.
package decker
