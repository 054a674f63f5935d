package provider

import (
	"strconv"
	"strings"
)

// Prompt styles select phrasing tuned per model family.
const (
	PromptStyleFlash = "flash"
	PromptStylePro   = "pro"
)

// Prompt modes: catalog edits follow a reference image; expert mode asks the
// model to design a best-fit cut from the selfie alone.
const (
	PromptModeCatalog = "catalog"
	PromptModeExpert  = "expert"
)

const PromptSetDefault = 1

var promptSetOptions = map[int]struct{}{1: {}, 2: {}, 3: {}, 4: {}, 5: {}}

// PromptOptions parameterizes BuildHairTransformationPrompt.
type PromptOptions struct {
	UseCompositeInput     bool
	IncludeBeardReference bool
	StyleDescription      string
	HairColorName         string
	BeardColorName        string
	ApplyBeardEdit        bool
	PromptStyle           string // flash | pro (default pro)
	PromptSet             int
	PromptMode            string // catalog | expert (default catalog)
	ExpertPreferences     map[string]string
}

// ResolvePromptSet clamps any raw prompt-set value to a known set number.
func ResolvePromptSet(raw string) int {
	parsed, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return PromptSetDefault
	}
	if _, ok := promptSetOptions[parsed]; !ok {
		return PromptSetDefault
	}
	return parsed
}

// BuildHairTransformationPrompt renders the natural-language edit instruction
// sent to generative providers.
func BuildHairTransformationPrompt(opts PromptOptions) string {
	if strings.ToLower(strings.TrimSpace(opts.PromptMode)) == PromptModeExpert {
		return buildExpertPrompt(opts.HairColorName, opts.ExpertPreferences)
	}
	if strings.ToLower(strings.TrimSpace(opts.PromptStyle)) == PromptStyleFlash {
		return buildFlashPrompt(opts)
	}
	return buildProPrompt(opts)
}

func normalizeStyleDescription(description string) string {
	return strings.Join(strings.Fields(description), " ")
}

func resolvedSet(set int) int {
	if _, ok := promptSetOptions[set]; !ok {
		return PromptSetDefault
	}
	return set
}

// injectHairColor appends "in <color> color" to the leading style instruction.
func injectHairColor(instruction, hairColorName string) string {
	color := strings.TrimSpace(hairColorName)
	if color == "" {
		return instruction
	}
	trimmed := strings.TrimRight(instruction, " ")
	trimmed = strings.TrimSuffix(trimmed, ".")
	return trimmed + " in " + color + " color."
}

func flashInputContext(useComposite, withBeardReference bool) string {
	if useComposite {
		if withBeardReference {
			return "Input: multi-panel image where LEFT is selfie, MIDDLE is hairstyle reference, and RIGHT is beard reference."
		}
		return "Input: two-panel image where LEFT is selfie and RIGHT is hairstyle reference."
	}
	if withBeardReference {
		return "Input: Image 1 is selfie, Image 2 is hairstyle reference, and Image 3 is beard reference."
	}
	return "Input: Image 1 is selfie and Image 2 is hairstyle reference."
}

func proInputContext(useComposite, withBeardReference bool) string {
	if useComposite {
		if withBeardReference {
			return "Input Context: The input is a horizontal multi-panel image. " +
				"Image 1 (LEFT): The Subject (Selfie). " +
				"Image 2 (MIDDLE): The Hairstyle Reference. " +
				"Image 3 (RIGHT): The Beard Reference."
		}
		return "Input Context: The input is a two-panel image. " +
			"Image 1 (LEFT): The Subject (Selfie). " +
			"Image 2 (RIGHT): The Hairstyle Reference."
	}
	if withBeardReference {
		return "Input Context: Image 1: The Subject (Selfie). " +
			"Image 2: The Hairstyle Reference. " +
			"Image 3: The Beard Reference."
	}
	return "Input Context: Image 1: The Subject (Selfie). Image 2: The Hairstyle Reference."
}

func joinParts(parts []string) string {
	kept := parts[:0]
	for _, part := range parts {
		if part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, " ")
}

func buildFlashPrompt(opts PromptOptions) string {
	styleDescription := normalizeStyleDescription(opts.StyleDescription)
	hairColor := strings.TrimSpace(opts.HairColorName)
	beardColor := strings.TrimSpace(opts.BeardColorName)
	withBeardReference := opts.IncludeBeardReference && opts.ApplyBeardEdit
	set := resolvedSet(opts.PromptSet)

	styleDescriptionInstruction := ""
	if styleDescription != "" {
		styleDescriptionInstruction = "Additional haircut description from style catalog: " +
			styleDescription + ". Use this text together with Image 2 to improve haircut matching."
	}

	var beardInstruction, beardColorInstruction string
	if withBeardReference {
		beardInstruction = "Use Image 3 as beard reference and blend sideburns naturally into the haircut."
		if beardColor != "" {
			beardColorInstruction = "Set beard color to " + beardColor + "."
		} else {
			beardColorInstruction = "Keep beard color natural."
		}
	} else {
		beardInstruction = "Keep beard shape and color unchanged."
	}

	var styleInstructions []string
	switch set {
	case 2:
		styleInstructions = []string{
			"Task: replace hairstyle in Image 1 using Image 2 as the only haircut target.",
			"Hard edit: completely remove the current scalp hair in Image 1 before applying the new style.",
			"Do not preserve old hair shape, length, or volume.",
			"Haircut match must be obvious: same silhouette, same fringe or part direction, same top mass, and same side/fade flow.",
			"If the result looks unchanged, regenerate with stronger replacement.",
		}
	case 3:
		styleInstructions = []string{
			"Replace only scalp hair in Image 1 with the hairstyle from Image 2.",
			"Match the reference haircut shape clearly, including top volume, part/fringe direction, and side taper.",
			"Prioritize haircut similarity over the original hairstyle.",
		}
	case 4:
		styleInstructions = []string{
			"Two-step edit: first remove existing scalp hair, then apply the hairstyle from Image 2.",
			"The final haircut should read as the reference style on the same person, not a light variation of the old cut.",
			"Match outline, layers, top lift, fringe/part, and fade gradient from the reference.",
			"Force a visible style change while preserving photorealism.",
		}
	case 5:
		styleInstructions = []string{
			"Change only the scalp hair in Image 1.",
			"Replace the hairstyle in Image 1 with the hairstyle from Image 2.",
			"Reference haircut is the source of truth. Do not keep the original haircut shape.",
			"Match the reference overall silhouette, total length, top volume, fringe/part direction, and side/fade shape.",
		}
	default:
		styleInstructions = []string{
			"Use Image 2 as the haircut target for Image 1.",
			"Fully replace the current hairstyle in Image 1. Do not preserve the original hair shape or volume.",
			"Match the reference hairstyle clearly: silhouette, fringe/part direction, top volume, and side/fade shape.",
		}
	}
	styleInstructions[0] = injectHairColor(styleInstructions[0], hairColor)

	parts := []string{
		flashInputContext(opts.UseCompositeInput, withBeardReference),
		styleDescriptionInstruction,
	}
	parts = append(parts, styleInstructions...)
	parts = append(parts,
		"Keep face, skin tone, body, and clothing unchanged.",
		"Keep face direction exactly the same as Image 1.",
		"Keep background, camera angle, and lighting unchanged.",
		beardInstruction,
		beardColorInstruction,
		"Return one realistic portrait image only.",
	)
	return joinParts(parts)
}

func buildProPrompt(opts PromptOptions) string {
	styleDescription := normalizeStyleDescription(opts.StyleDescription)
	hairColor := strings.TrimSpace(opts.HairColorName)
	beardColor := strings.TrimSpace(opts.BeardColorName)
	withBeardReference := opts.IncludeBeardReference && opts.ApplyBeardEdit
	set := resolvedSet(opts.PromptSet)

	styleDescriptionInstruction := ""
	if styleDescription != "" {
		styleDescriptionInstruction = "REFERENCE TEXT: Additional haircut description from style catalog: " +
			styleDescription + ". Use this text together with Image 2 to improve haircut matching."
	}

	var beardInstruction, beardColorInstruction string
	if withBeardReference {
		beardInstruction = "BEARD: Replace beard shape using Image 3, blending sideburns naturally into the haircut."
		if beardColor != "" {
			beardColorInstruction = "Set beard color to " + beardColor + "."
		} else {
			beardColorInstruction = "Keep beard color natural."
		}
	} else {
		beardInstruction = "BEARD: Keep beard shape and color unchanged."
	}

	var processInstruction string
	switch set {
	case 2:
		processInstruction = "Execution Guidelines: " +
			"1. REPLACE: Completely remove the subject's original hairstyle. " +
			"Do not let the original hair volume or shape limit the new style. " +
			"2. MATCH: Visibly transfer the structure of the reference hairstyle to the subject. " +
			"You must match the reference silhouette, fringe direction, top volume, side/fade gradation, and parting."
	case 3:
		processInstruction = "Execution Guidelines: Perform a direct hair replacement only. " +
			"Remove existing scalp hair, then reconstruct the reference style with clear silhouette match, " +
			"fringe/part match, top-volume match, and side/fade match. " +
			"The output must show a visible haircut change."
	case 4:
		processInstruction = "Execution Guidelines: Stage 1 erase original scalp hair influence. " +
			"Stage 2 apply the reference haircut faithfully. " +
			"Stage 3 verify the output is visibly different from the input haircut while identity and scene remain unchanged."
	case 5:
		processInstruction = "Execution Guidelines: Edit scalp hair only. Replace the hairstyle in Image 1 with Image 2 and treat the reference " +
			"as the source of truth. Match silhouette, total length, top volume, fringe/part direction, and side/fade shape."
	default:
		processInstruction = "Execution Guidelines: Replace the hair in Image 1 with the hairstyle in Image 2. " +
			"Fully remove original hairstyle constraints and transfer the reference haircut structure, including silhouette, " +
			"fringe/part direction, top volume, side/fade gradation, and parting."
	}
	if hairColor != "" {
		processInstruction += " Apply the hairstyle in " + hairColor + " color."
	}

	return joinParts([]string{
		"Operation: Hair Replacement.",
		proInputContext(opts.UseCompositeInput, withBeardReference),
		"Primary Instruction: Create a realistic haircut simulation using the reference hairstyle.",
		styleDescriptionInstruction,
		processInstruction,
		"Strict Constraints: IDENTITY: Keep the face, skin tone, body, and clothing of Image 1 exactly unchanged.",
		"POSE: Keep face direction exactly the same as Image 1.",
		"ENVIRONMENT: Keep the background, camera angle, and lighting of Image 1 exactly unchanged.",
		beardInstruction,
		beardColorInstruction,
		"OUTPUT: Return a single, high-fidelity portrait image.",
	})
}

var expertPreferenceDefaults = map[string]string{
	"style_vibe":  "classic",
	"lifestyle":   "balanced",
	"maintenance": "medium",
	"hair_length": "short",
}

func normalizeExpertPreferences(preferences map[string]string) map[string]string {
	normalized := make(map[string]string, len(expertPreferenceDefaults))
	for key, fallback := range expertPreferenceDefaults {
		value := strings.ToLower(strings.TrimSpace(preferences[key]))
		if value == "" {
			value = fallback
		}
		normalized[key] = value
	}
	return normalized
}

func buildExpertPrompt(hairColorName string, preferences map[string]string) string {
	normalized := normalizeExpertPreferences(preferences)
	hairColor := strings.TrimSpace(hairColorName)

	colorInstruction := "Target hair color: keep natural tone."
	if hairColor != "" {
		colorInstruction = "Target hair color: " + hairColor + "."
	}

	return joinParts([]string{
		"Operation: Expert Haircut Recommendation and Simulation.",
		"Role: You are a senior licensed barber and haircut consultant making a real, in-chair recommendation.",
		"Input Context: Image 1 is the subject selfie.",
		"Primary Goal: design and render a haircut that best fits the subject using professional barbering and facial-proportion analysis.",
		"Analysis Rules: estimate face shape, forehead height, hairline position, recession pattern, hair density, and crown behavior from the selfie.",
		"Current-State Check: identify current visible hair length and density first, then plan only feasible changes from that baseline.",
		"Decision Rules: choose cut geometry, fade/taper level, top length distribution, and edge transitions that improve facial balance and natural realism.",
		"User Preferences:",
		"style vibe=" + normalized["style_vibe"] + "; lifestyle=" + normalized["lifestyle"] +
			"; maintenance level=" + normalized["maintenance"] + "; preferred length=" + normalized["hair_length"] + ".",
		"Feasibility Policy: prioritize physically realistic outcomes from the current hair state visible in Image 1.",
		"Preferences are guidance, not hard constraints. If a preference conflicts with visible hair reality, choose the closest feasible alternative.",
		"Length Realism Rules: do not invent non-existent long hair mass from very short cuts. Avoid major length jumps that would require months of growth.",
		"Conflict Rule Example: if the input haircut is very short and the preference asks for long hair, keep a short/near-short realistic result and express the requested vibe through texture, taper, and shape details.",
		"Service Realism Rules: keep the result achievable in a normal barbershop session without wigs, extensions, transplants, or synthetic add-ons.",
		"Realistic-over-Literal Rule: when realism and preference conflict, realism wins.",
		colorInstruction,
		"Do not use external style-catalog assumptions. Generate a best-fit haircut directly from the subject analysis and the stated preferences.",
		"Strict Constraints: keep face identity, skin tone, body, clothing, and pose exactly unchanged.",
		"Keep background, camera angle, and lighting unchanged.",
		"Edit scalp hair only. Keep beard shape and beard color unchanged.",
		"Output: return one realistic, high-fidelity portrait image.",
	})
}
