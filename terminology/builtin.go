package terminology

// Code systems commonly referenced by rare-disease and phenotype data.
var (
	NCBITaxon = NewCodeSystem("NCBI organismal classification", "NCBITaxon",
		"https://www.ncbi.nlm.nih.gov/taxonomy")
	GENO = NewCodeSystem("GENO: The Genotype Ontology", "GENO",
		"http://www.genoontology.org/")
	SO = NewCodeSystem("Sequence types and features ontology", "SO",
		"http://www.sequenceontology.org/")
	ICD9 = NewCodeSystem("International Classification of Diseases, Ninth Revision", "ICD9",
		"https://www.cdc.gov/nchs/icd/icd9.htm", "ICD-9")
	ICD10GM = NewCodeSystem("International Classification of Diseases, Tenth Revision, German Modification", "ICD10GM",
		"https://www.bfarm.de/EN/Code-systems/Classifications/ICD/ICD-10-GM/_node.html", "ICD10-GM")
	ICD10CM = NewCodeSystem("International Classification of Diseases, Tenth Revision, Clinical Modification", "ICD10CM",
		"https://www.cdc.gov/nchs/icd/icd10cm.htm", "ICD10-CM", "ICD10_CM")
	SNOMEDCT = NewCodeSystem("SNOMED CT", "SNOMED",
		"https://www.snomed.org/snomed-ct", "SCT")
	ICD11 = NewCodeSystem("International Classification of Diseases, Eleventh Revision", "icd11",
		"https://icd.who.int/en")
	HL7FHIR = NewCodeSystem("Health Level 7 Fast Healthcare Interoperability Resources", "HL7FHIR",
		"https://www.hl7.org/fhir/")
	GA4GH = NewCodeSystem("Global Alliance for Genomics and Health", "ga4gh",
		"https://www.ga4gh.org/")
	ISO3166 = NewCodeSystem("ISO 3166-1:2020(en) alpha-2 and alpha-3 country codes", "iso3166",
		"https://www.iso.org/iso-3166-country-codes.html")
	ICF = NewCodeSystem("International Classification of Functioning, Disability and Health (ICF)", "icf",
		"https://www.who.int/classifications/icf/en/")
	MONDO = NewCodeSystem("Monarch Disease Ontology", "MONDO",
		"http://purl.obolibrary.org/obo/mondo.owl")
	ORDO = NewCodeSystem("Orphanet Rare Disease Ontology", "ORPHA",
		"http://www.orpha.net/")
	OMIM = NewCodeSystem("Online Mendelian Inheritance", "OMIM",
		"https://omim.org/")
	LOINC = NewCodeSystem("Logical Observation Identifiers Names and Codes", "LOINC",
		"https://loinc.org/")
	HGVS = NewCodeSystem("Human Genome Variation Society", "HGVS",
		"http://varnomen.hgvs.org/")
	HGNC = NewCodeSystem("HUGO Gene Nomenclature Committee", "HGNC",
		"https://www.genenames.org/")
	HPO = &CodeSystem{
		Name:            "Human Phenotype Ontology",
		NamespacePrefix: "HP",
		URL:             "http://www.human-phenotype-ontology.org",
		IRIPrefix:       "http://purl.obolibrary.org/obo/HP_",
		Version:         DefaultVersion,
		Synonyms:        []string{"HPO"},
	}
	UO = NewCodeSystem("Units of Measurement Ontology", "UO",
		"http://www.ontobee.org/ontology/UO")
	NCIT = NewCodeSystem("NCI Thesaurus OBO Edition", "NCIT",
		"https://ncit.nci.nih.gov/")
)

// Builtin returns the built-in code systems in a stable order. The slice
// is fresh on every call; the code systems are shared.
func Builtin() []*CodeSystem {
	return []*CodeSystem{
		NCBITaxon, GENO, SO, ICD9, ICD10GM, ICD10CM, SNOMEDCT, ICD11,
		HL7FHIR, GA4GH, ISO3166, ICF, MONDO, ORDO, OMIM, LOINC,
		HGVS, HGNC, HPO, UO, NCIT,
	}
}
