package prompt

// Theme is one lens the concept model is pointed through.
type Theme struct {
	Dimension   string
	Instruction string
}

var Themes = []Theme{
	{
		Dimension:   "iconic-landmark",
		Instruction: "A famous building, statue, or physical structure. Focus on a single architectural element.",
	},
	{
		Dimension:   "local-food",
		Instruction: "A specific local dish, street food, or beverage. Focus on a single serving.",
	},
	{
		Dimension:   "local-fauna",
		Instruction: "A local animal, pest, or pet associated with the city (e.g., NYC rat, Tokyo Shiba Inu).",
	},
	{
		Dimension:   "transportation",
		Instruction: "A vehicle or mode of transit specific to this city (e.g., Yellow Cab, Gondola, Tuk-Tuk).",
	},
	{
		Dimension:   "street-object",
		Instruction: "A small object found on the street (e.g., Fire Hydrant, Postbox, Street Sign).",
	},
	{
		Dimension:   "local-stereotype",
		Instruction: "A humorous caricature of a typical local resident or tourist behavior.",
	},
}

var Styles = []string{
	"classic bold vector sticker",
	"satirical caricature illustration",
	"funny cartoon style",
	"bold line art with flat colors",
	"retro souvenir decal style",
}
