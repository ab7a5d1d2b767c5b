// Package loader turns declarative YAML binding manifests into di.Loaders.
//
// A manifest names types, scopes and qualifiers as strings. A Catalog maps
// those names to type keys and markers; it is usually filled from the
// descriptor table the injector introspects with:
//
//	cat := loader.NewCatalog().AddTable(types)
//	loaders, err := loader.Loaders(loader.NewFileManifestLoader("manifests"), cat, "garage")
//
// Example manifest:
//
//	name: garage
//	includes: [engines]
//	scopes: [request]
//	bindings:
//	  - type: "*garage.Car"
//	    strict:
//	      as: [garage.Vehicle, "*garage.Car"]
//	  - type: "*garage.Wheel"
//	    count: 4
//	    list:
//	      element: "*garage.Wheel"
//
// Includes are loaded before the including manifest, so their list members
// come first. Each manifest is loaded once even when included twice.
package loader
