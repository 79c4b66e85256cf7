// Package pathtmpl maps contexts to filesystem paths and back.
//
// A project carries a table of named templates, strings with {token}
// placeholders such as "{entity_path}/Export/{product}". Resolve
// substitutes token values into a template, Extract recovers the token
// values from a concrete path, and Match enumerates paths on disk that fit
// a template with some tokens left open. Templates may reference each
// other through alias tokens ("{product_path}" expanding to the products
// template), so every operation works on the flattened form.
package pathtmpl
