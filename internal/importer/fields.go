// Package importer implements the spreadsheet import pipeline: header
// resolution, field normalization, enrichment, batched processing, and
// report assembly.
package importer

// Header aliases per canonical field, tried in order. Spreadsheets arrive
// from different export tools, so each field accepts accented and
// unaccented Portuguese plus the English variants seen in the wild.
var (
	aliasesName         = []string{"Nome", "Nome do Estabelecimento", "Estabelecimento", "Razão Social", "Razao Social", "Nome Fantasia", "Name", "Business Name"}
	aliasesCNPJ         = []string{"CNPJ", "Cnpj", "CPF/CNPJ", "Documento", "Tax ID"}
	aliasesPhone        = []string{"Telefone", "Fone", "Celular", "Phone", "Telefone Fixo"}
	aliasesWhatsApp     = []string{"WhatsApp", "Whatsapp", "Whats", "Zap"}
	aliasesEmail        = []string{"E-mail", "Email", "E-Mail", "Correio Eletrônico", "Correio Eletronico"}
	aliasesCEP          = []string{"CEP", "Cep", "Código Postal", "Codigo Postal", "Postal Code", "Zip"}
	aliasesStreet       = []string{"Endereço", "Endereco", "Rua", "Logradouro", "Street", "Address"}
	aliasesNumber       = []string{"Número", "Numero", "Nº", "No", "Number", "Num"}
	aliasesComplement   = []string{"Complemento", "Complement"}
	aliasesNeighborhood = []string{"Bairro", "Neighborhood", "Distrito"}
	aliasesCity         = []string{"Cidade", "Município", "Municipio", "City"}
	aliasesState        = []string{"Estado", "UF", "Uf", "State"}
	aliasesInstagram    = []string{"Instagram", "Insta", "@", "Rede Social", "Social"}
	aliasesWebsite      = []string{"Site", "Website", "Web Site", "URL", "Página", "Pagina"}
	aliasesCategory     = []string{"Categoria", "Category", "Ramo", "Segmento", "Tipo"}
	aliasesSpecialties  = []string{"Especialidades", "Especialidade", "Specialties", "Specialty"}
	aliasesBenefit      = []string{"Benefício", "Beneficio", "Vantagem", "Desconto", "Benefit", "Oferta"}
	aliasesUsageRules   = []string{"Regras", "Regras de Uso", "Regras de Utilização", "Regras de Utilizacao", "Rules", "Condições", "Condicoes"}
	aliasesValidity     = []string{"Validade", "Vigência", "Vigencia", "Período", "Periodo", "Validity"}
	aliasesOpeningHours = []string{"Horário", "Horario", "Horário de Funcionamento", "Horario de Funcionamento", "Funcionamento", "Hours", "Opening Hours"}
)
