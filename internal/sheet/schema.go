package sheet

// Canonical record fields a column can feed.
const (
	FieldAssetName    = "asset_name"
	FieldSerialNumber = "serial_number"
	FieldAssignedUser = "assigned_user"
	FieldEmail        = "email"
	FieldService      = "service"
	FieldDescription  = "description"
	FieldAssignedOn   = "assigned_on"
	FieldStatus       = "status"
	FieldRemark       = "remark"

	FieldLocation  = "location"
	FieldIPAddress = "ip_address"
	FieldHostname  = "hostname"
	FieldModel     = "model"

	FieldBrand      = "brand"
	FieldReference  = "reference"
	FieldTonerType  = "toner_type"
	FieldBlack      = "black"
	FieldCyan       = "cyan"
	FieldMagenta    = "magenta"
	FieldYellow     = "yellow"
	FieldColorBlack = "color_black"
	FieldDrum       = "drum"
	FieldState      = "state"
)

// Synonym maps one header spelling to a field.
type Synonym struct {
	Header string `yaml:"header"`
	Field  string `yaml:"field"`
}

// Schema describes how the columns of one kind of sheet map to fields.
// FieldOrder is used when the sheet has no header row.
type Schema struct {
	Name       string
	FieldOrder []string

	synonyms []Synonym
	index    map[string]string
}

// NewSchema builds a schema. When a normalised header appears more than once
// in synonyms, the first entry wins.
func NewSchema(name string, fieldOrder []string, synonyms []Synonym) Schema {
	s := Schema{
		Name:       name,
		FieldOrder: fieldOrder,
		synonyms:   append([]Synonym(nil), synonyms...),
		index:      make(map[string]string, len(synonyms)),
	}
	for _, syn := range synonyms {
		key := NormalizeHeader(syn.Header)
		if _, dup := s.index[key]; dup || key == "" {
			continue
		}
		s.index[key] = syn.Field
	}
	return s
}

// Lookup returns the field a header cell maps to.
func (s Schema) Lookup(header string) (string, bool) {
	field, ok := s.index[NormalizeHeader(header)]
	return field, ok
}

// Synonyms returns a copy of the schema's synonym table in lookup order.
func (s Schema) Synonyms() []Synonym {
	return append([]Synonym(nil), s.synonyms...)
}

// HasField reports whether field belongs to the schema.
func (s Schema) HasField(field string) bool {
	for _, f := range s.FieldOrder {
		if f == field {
			return true
		}
	}
	return false
}

// Extend returns a schema whose synonym table is s's followed by extra.
// Built-in spellings keep precedence.
func (s Schema) Extend(extra []Synonym) Schema {
	return NewSchema(s.Name, s.FieldOrder, append(s.Synonyms(), extra...))
}

func syn(field string, headers ...string) []Synonym {
	out := make([]Synonym, len(headers))
	for i, h := range headers {
		out[i] = Synonym{Header: h, Field: field}
	}
	return out
}

func join(groups ...[]Synonym) []Synonym {
	var out []Synonym
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// PCSchema maps workstation sheets.
var PCSchema = NewSchema("pc",
	[]string{
		FieldAssetName, FieldSerialNumber, FieldAssignedUser, FieldEmail, FieldService,
		FieldDescription, FieldAssignedOn, FieldStatus, FieldRemark,
	},
	join(
		syn(FieldAssetName, "nom du poste", "nom poste", "nom_poste", "poste", "nom", "asset_name"),
		syn(FieldSerialNumber, "sn", "num_serie", "numéro de série", "n° série", "serial_number"),
		syn(FieldAssignedUser, "utilisateur", "user", "assigned_user"),
		syn(FieldEmail, "email", "mail", "e-mail"),
		syn(FieldService, "service", "département"),
		syn(FieldDescription, "description", "desc"),
		syn(FieldAssignedOn, "date d'affectation", "date daffectation", "date_aff", "assigned_on"),
		syn(FieldStatus, "état", "status", "statut"),
		syn(FieldRemark, "remarque", "remarques", "commentaire", "note"),
	),
)

// PrinterSchema maps printer sheets.
var PrinterSchema = NewSchema("printer",
	[]string{FieldLocation, FieldIPAddress, FieldHostname, FieldSerialNumber, FieldModel},
	join(
		syn(FieldLocation, "emplacement", "lieu", "localisation", "location"),
		syn(FieldIPAddress, "adresse ip", "adresseip", "ip", "ip_address"),
		syn(FieldHostname, "hostname", "nom d'hôte", "hôte", "nom"),
		syn(FieldSerialNumber, "numéro de série", "numero_serie", "n° série", "série", "nserie", "sn", "serial_number"),
		syn(FieldModel, "modèle", "modele_peripherique", "modèle périphérique", "type", "model"),
	),
)

// ConsumableSchema maps toner and drum stock sheets.
var ConsumableSchema = NewSchema("consumable",
	[]string{
		FieldBrand, FieldReference, FieldTonerType, FieldBlack, FieldCyan, FieldMagenta,
		FieldYellow, FieldColorBlack, FieldDrum, FieldDescription, FieldState,
	},
	join(
		syn(FieldBrand, "marque", "brand", "fabricant"),
		syn(FieldReference, "référence", "ref", "réf", "modèle", "reference"),
		syn(FieldTonerType, "type", "type toner", "type de toner", "toner_type"),
		syn(FieldBlack, "noir", "toner noir", "black", "bk"),
		syn(FieldCyan, "cyan"),
		syn(FieldMagenta, "magenta"),
		syn(FieldYellow, "jaune", "yellow"),
		syn(FieldColorBlack, "noir couleur", "color_black", "noir_couleur"),
		syn(FieldDrum, "drum", "tambour", "photoconducteur"),
		syn(FieldDescription, "description", "desc", "commentaire"),
		syn(FieldState, "état", "statut", "state"),
	),
)

// SchemaFor returns the built-in schema with the given name.
func SchemaFor(name string) (Schema, bool) {
	switch name {
	case PCSchema.Name:
		return PCSchema, true
	case PrinterSchema.Name:
		return PrinterSchema, true
	case ConsumableSchema.Name:
		return ConsumableSchema, true
	}
	return Schema{}, false
}
