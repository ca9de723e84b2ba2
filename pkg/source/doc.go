// Package source builds weighted trees from files.
//
// Three formats are supported:
//
//   - TM3: the tab-separated format of the classic Treemap tool. Line one
//     names the fields, line two gives their types (STRING, INTEGER, FLOAT or
//     DATE), and every following row holds one value per field followed by
//     the hierarchy path, whose last element names the leaf.
//   - XML: nested <branch> and <leaf> elements under a root element, each
//     with a <label>; leaves carry <weight> and <value>.
//   - JSON: nested objects with "label", "weight", "value", optional
//     "fields" and "children".
//
// Every node's payload is a [*Bean]: a label plus named fields. Which field
// drives leaf weights and which one feeds the color value is chosen with
// [Options]; nothing is global, so two trees loaded with different options
// can coexist.
//
// [BeanProvider] implements treemap.Provider over beans, and [Find] resolves
// a slash-separated label path to a node, which is how the CLI and the HTTP
// API address zoom targets.
package source
