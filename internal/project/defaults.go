package project

import "slate/internal/pathtmpl"

// MasterVersion is the reserved version name for the stable alias folder.
const MasterVersion = "master"

// DefaultStructure is the folder layout used when the project document does
// not override it. Keys are template names, values are token templates.
func DefaultStructure() pathtmpl.Table {
	return pathtmpl.Table{
		"assets":             "{root}/Assets/{asset_path}",
		"shots":              "{root}/Shots/{shot}",
		"products":           "{entity_path}/Export/{product}",
		"productVersions":    "{product_path}/{version}",
		"productFilesAssets": "{productversion_path}/{asset}_{product}_{version}{extension}",
		"productFilesShots":  "{productversion_path}/{shot}_{product}_{version}{extension}",
	}
}

// structureRefs binds alias tokens to the templates they expand to.
func structureRefs() map[string]string {
	return map[string]string{
		"product_path":        "products",
		"productversion_path": "productVersions",
	}
}
