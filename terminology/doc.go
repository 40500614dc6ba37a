// Package terminology provides the code systems a data model draws its
// codings from, the parser that turns "namespace:code" text into a Coding,
// and an offline Registry of concept tables loaded from FHIR R4
// CodeSystem resources.
//
// Example usage:
//
//	resources := []*terminology.CodeSystem{terminology.HPO, terminology.OMIM}
//	c, err := terminology.ParseCoding("HP:0001250", resources, compliance.Strict)
//	// c.System == terminology.HPO, c.Code == "0001250"
package terminology
