// Package models contains GORM persistence models. They carry the table
// mappings so that domain types stay free of ORM tags; each model has
// ToDomain/FromDomain mappers used by the repositories.
package models
