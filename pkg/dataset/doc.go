// Package dataset defines the data model shared by the scanner, reconciler
// and validator: the on-disk layout of a split-partitioned dataset, image
// records, annotation candidates with their id-prefix parsing, and the
// injected class set.
//
// A dataset root looks like:
//
//	<root>/images/<split>/*.{png,jpg,jpeg}
//	<root>/labels/<split>/*.txt
//
// Annotation files are either canonical (<base>.txt) or carry the id prefix
// added by the annotation tool (<id>-<base>.txt).
package dataset
