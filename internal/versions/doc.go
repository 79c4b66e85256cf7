// Package versions discovers and orders product versions on disk.
//
// A version is a folder named vNNNN (optionally vNNNN_wedge) or master
// under a product's export directory. The same version may exist under
// several storage roots; scanning merges those into one record that lists
// every path. Ordering treats master as newer than any number, and a
// version only counts if it holds at least one importable file.
package versions
