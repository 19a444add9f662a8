// Package compiler implements the Claim Compiler (spec.md §4.5): it
// assembles the immutable Claim Context from extracted document data, a
// matched Processing Rule, and the customer's Account Map.
//
// Grounded on original_source/app/svc_creator/compiler.py: Claim, whose
// single god-object was split here into Compile (assembly), the
// description/status-text templating DSL (description.go, statustext.go),
// reference selection (reference.go), and transaction-tag selection
// (transaction.go) — each independently testable, following the teacher's
// convention of one small file per concern rather than one large type.
package compiler

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/DusanPaal/claim-management/internal/pkgerrors"
)

var (
	bareTokenRe     = regexp.MustCompile(`^\w+$`)
	anyTokenRe      = regexp.MustCompile(`<\?*(\w+)>`)
	optionalTokenRe = regexp.MustCompile(`<\?+(\w+)>`)
	leadingDelimRe  = regexp.MustCompile(`^.(<)`)
	trailingWordRe  = regexp.MustCompile(`\W$`)
	leadingWordRe   = regexp.MustCompile(`^\W`)
)

// GenerateDescription evaluates a description rule's token DSL against a
// set of field values (spec.md §4.5 "Description templating"):
//
//	<field>    required token; extraction must have populated the field
//	<?field>   optional token, lowest '?' count wins priority
//	<3branch>  zero-pad the value to width 3 (branch only; other fields
//	           accept a width prefix but the original never pads them)
//
// values holds the candidate field values by bare token name; a missing
// or empty value is treated as "not bound" (original_source
// Claim._generate_description).
func GenerateDescription(descRule string, values map[string]string) (string, error) {
	var usedTokens []string
	if bareTokenRe.MatchString(descRule) {
		usedTokens = append(usedTokens, descRule)
	}
	for _, m := range anyTokenRe.FindAllStringSubmatch(descRule, -1) {
		usedTokens = append(usedTokens, m[1])
	}

	var optionalTokens []string
	for _, m := range optionalTokenRe.FindAllStringSubmatch(descRule, -1) {
		optionalTokens = append(optionalTokens, m[1])
	}

	required := make(map[string]bool)
	optionalSet := make(map[string]bool, len(optionalTokens))
	for _, t := range optionalTokens {
		optionalSet[t] = true
	}
	for _, t := range usedTokens {
		if !optionalSet[t] {
			required[t] = true
		}
	}

	// A required token carrying a padding-width prefix (e.g. "3branch")
	// never matches a real field name, so this check — like the
	// original's `param in required_tokens` test over kwargs entries —
	// only fires for tokens actually named after a bound field.
	for field, val := range values {
		if val == "" && required[field] {
			return "", pkgerrors.New(pkgerrors.KindFatal, "compiler.GenerateDescription",
				fmt.Sprintf("required token %q has no bound value", field))
		}
	}

	seen := make(map[string]bool, len(usedTokens))
	for _, t := range usedTokens {
		if seen[t] {
			return "", pkgerrors.New(pkgerrors.KindFatal, "compiler.GenerateDescription", "duplicated tokens are not allowed")
		}
		seen[t] = true
	}

	anyBound := false
	for _, t := range usedTokens {
		if _, ok := values[t]; ok {
			anyBound = true
			break
		}
	}
	if !anyBound {
		return "", pkgerrors.New(pkgerrors.KindFatal, "compiler.GenerateDescription",
			"none of the tokens in the description rule can be replaced by the given values")
	}

	if len(usedTokens) == len(optionalTokens) {
		return "", pkgerrors.New(pkgerrors.KindFatal, "compiler.GenerateDescription",
			"at least one non-optional token must be used in the description rule")
	}

	desc := descRule

	for _, tok := range optionalTokens {
		if values[tok] == "" {
			re := regexp.MustCompile(`.?<\?+` + regexp.QuoteMeta(tok) + `>`)
			desc = re.ReplaceAllString(desc, "")
		}
	}
	desc = leadingDelimRe.ReplaceAllString(desc, "$1")

	remaining := optionalTokenRe.FindAllString(desc, -1)
	if len(remaining) > 1 {
		lowest := minQuestionMarks(remaining)
		desc = replaceFirstOptionalMatch(desc, lowest)
		desc = regexp.MustCompile(`.<\?+\w+>`).ReplaceAllString(desc, "")
	}
	desc = regexp.MustCompile(`\?+`).ReplaceAllString(desc, "")

	for arg, val := range values {
		if val == "" {
			continue
		}
		repl := val
		width, hasWidth, err := paddingWidth(arg, descRule)
		if err != nil {
			return "", err
		}
		token := arg
		if hasWidth {
			if arg == "branch" {
				repl = zeroPad(repl, width)
			}
			token = strconv.Itoa(width) + arg
		}
		re := regexp.MustCompile(`<?` + regexp.QuoteMeta(token) + `>?`)
		desc = re.ReplaceAllString(desc, repl)
	}

	if strings.ContainsAny(desc, "<>?") {
		return "", pkgerrors.New(pkgerrors.KindFatal, "compiler.GenerateDescription", "description template was not fully resolved")
	}

	desc = trailingWordRe.ReplaceAllString(desc, "")
	desc = leadingWordRe.ReplaceAllString(desc, "")

	if strings.Contains(desc, "None") {
		return "", pkgerrors.New(pkgerrors.KindFatal, "compiler.GenerateDescription", "description template resolved to a null placeholder")
	}

	return desc, nil
}

func minQuestionMarks(tokens []string) string {
	best := tokens[0]
	bestCount := strings.Count(best, "?")
	for _, t := range tokens[1:] {
		if c := strings.Count(t, "?"); c < bestCount {
			best, bestCount = t, c
		}
	}
	return best
}

// replaceFirstOptionalMatch drops exactly one '?' from the first
// occurrence of lowest (the lowest-priority-count optional token) so it
// survives the subsequent blanket removal of still-bracketed tokens
// (spec.md §4.5: "keep the one with the fewest `?` marks").
func replaceFirstOptionalMatch(desc, lowest string) string {
	idx := strings.Index(desc, lowest)
	if idx < 0 {
		return desc
	}
	qIdx := strings.Index(lowest, "?")
	if qIdx < 0 {
		return desc
	}
	reduced := lowest[:qIdx] + lowest[qIdx+1:]
	return desc[:idx] + reduced + desc[idx+len(lowest):]
}

func paddingWidth(tok, descRule string) (int, bool, error) {
	re := regexp.MustCompile(`(-?\d+)` + regexp.QuoteMeta(tok))
	m := re.FindStringSubmatch(descRule)
	if m == nil {
		return 0, false, nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false, pkgerrors.New(pkgerrors.KindFatal, "compiler.GenerateDescription", "invalid padding width")
	}
	if n < 0 {
		return 0, false, pkgerrors.New(pkgerrors.KindFatal, "compiler.GenerateDescription", fmt.Sprintf("invalid padding width: %d", n))
	}
	return n, true, nil
}

func zeroPad(s string, width int) string {
	neg := strings.HasPrefix(s, "-")
	body := strings.TrimPrefix(s, "-")
	for len(body) < width {
		body = "0" + body
	}
	if neg {
		return "-" + body
	}
	return body
}

// CreateAttachmentName substitutes the "<case_id>" placeholder of an
// attachment-naming rule (spec.md §4.5).
func CreateAttachmentName(attRule string, caseID int64) (string, error) {
	if !strings.Contains(attRule, "<case_id>") {
		return "", pkgerrors.New(pkgerrors.KindFatal, "compiler.CreateAttachmentName", "placeholder <case_id> not found in the formatting rule")
	}
	return strings.ReplaceAll(attRule, "<case_id>", strconv.FormatInt(caseID, 10)), nil
}

var searchtextPlaceholders = []string{
	"backreference_number", "document_number", "invoice_number", "archive_number", "identifier",
}

// CreateCaseSearchText formats a DMS case search title, substituting
// field placeholders and converting SAP wildcard '*' into the RFC '%'
// the DMS search RPC expects (spec.md §4.5, original_source
// Claim._create_case_searchtext).
func CreateCaseSearchText(searchRule string, data map[string]string) (string, error) {
	result := strings.ReplaceAll(searchRule, "*", "%")

	for _, name := range searchtextPlaceholders {
		val := data[name]
		result = strings.ReplaceAll(result, "<"+name+">", val)
		result = strings.ReplaceAll(result, name, val)
	}

	if strings.ContainsAny(result, "<>?") {
		return "", pkgerrors.New(pkgerrors.KindFatal, "compiler.CreateCaseSearchText", "title formatting left unresolved placeholders")
	}
	if result == searchRule || result == "" || result == "%%" {
		return "", pkgerrors.New(pkgerrors.KindFatal, "compiler.CreateCaseSearchText", "title formatting failed")
	}

	return result, nil
}
