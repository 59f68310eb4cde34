package patterns

import "regexp"

// Default returns the built-in catalogue, ported from the noise patterns
// accumulated against a real research-institute web estate: ZMS CMS folder
// markers, DESY-style legal boilerplate, cookie banners in English and
// German. Most of the catalogue is domain-specific text and would read as
// noise to a reviewer unfamiliar with the source site; that is expected of
// a pattern library grown against one estate over time.
//
// A handful of source patterns relied on backreferences (`</\1>` matching
// whichever of {div,section,aside,footer} opened the tag) or a negative
// lookahead (a wrapper div that does not contain `<main>`/`<article>`).
// Go's regexp engine is RE2-based and supports neither construct, so those
// are expanded into one alternative per tag, or, for the lookahead case,
// loosened to match the wrapper regardless of its contents -- the
// candidate-main-content selection in the cleaner already runs before the
// pattern groups and ordinarily keeps `<main>`/`<article>` out of a node
// tagged "wrapper" in the first place, so the loss of precision here rarely
// matters in practice.
func Default() *Catalogue {
	return &Catalogue{
		Critical:    compileAll(criticalPatterns),
		High:        compileAll(highPriorityPatterns),
		Medium:      compileAll(mediumPriorityPatterns),
		Low:         compileAll(lowPriorityPatterns),
		Specialized: compileAll(specializedPatterns),
		Cleanup:     compileAll(cleanupPatterns),
		TextCleanup: compileAll(textCleanupPatterns),
		Whitespace:  regexp.MustCompile(`[\x{00a0}\x{202f}\n\r\t\s]+`),

		CookieTextPatterns: compileAll(cookieTextPatterns),
	}
}

var cookieTextPatterns = []string{
	`(?i)cookie[- ]?banner`,
	`(?i)cookie[- ]?consent`,
	`(?i)diese website verwendet cookies`,
	`(?i)we use cookies`,
	`(?i)accept all cookies`,
	`(?i)cookie einstellungen`,
	`(?i)cookie policy`,
	`(?i)consent to cookies`,
	`(?i)diese seite nutzt cookies`,
	`(?i)cookie notice`,
	`(?i)cookie preferences`,
	`(?i)cookie declaration`,
	`(?i)cookie information`,
	`(?i)cookie settings`,
	`(?i)cookie usage`,
}

var wrapperTags = []string{"div", "section", "aside", "footer"}

func wrapperTagPattern(bodyClass string) []string {
	out := make([]string, 0, len(wrapperTags))
	for _, tag := range wrapperTags {
		out = append(out, `(?is)<`+tag+`[^>]*`+bodyClass+`[^>]*>.*?</`+tag+`>`)
	}
	return out
}

var criticalPatterns = append(append(append([]string{
	`(?is)<script[^>]*>.*?</script>`,
	`(?is)<style[^>]*>.*?</style>`,
	`(?is)<nav\b[^>]*>.*?</nav>`,
	`(?is)<(?:header|footer)\b[^>]*>.*?</(?:header|footer)>`,
	`(?is)<form\b[^>]*>.*?</form>`,
	`(?is)<(?:div|section|nav|ul|header)\b[^>]*id\s*=\s*['"](?:footer|overall|wrapper|icons|search_icon|phone_icon|close_gcs|mobile_menu_header|mobile_menu|mobile_dropdown|mobile_loading|mobile_dropdown_content|top|logoarea|topleft|topright|topmenu|menu|main_menu|header|leftmenu|rightmenu)\b[^'"]*['"][^>]*>.*?</(?:div|section|nav|ul|header)>`,
},
	wrapperTagPattern(`id=["']?[^"'>]*\b(cookie|consent|privacy|banner|notice|preferences)\b[^"'>]*["']?`)...),
	wrapperTagPattern(`class=["'][^"'>]*\b(cookie|consent|banner|popup|notice|preferences|privacy|cookie-consent-wrapper|cookie-bar-wrapper)[^"'>]*["']`)...),
	append(wrapperTagPattern(`style=["'][^"']*display\s*:\s*none[^"']*["']`),
		`(?is)<[^>]+class=["'][^"'>]*\bcookie-bar__inner\b[^"'>]*["'][^>]*>.*?</[^>]+>`,
		`(?is)<!--\s*Cookie\s+Bar\s*-->.*?<!--\s*End\s+Cookie\s+Bar\s*-->`,
		`(?is)<div[^>]*id=["']?cookie-bar["']?[^>]*>.*?</div>`,
		`(?is)<nav\b[^>]*id\s*=\s*['"](?:leftmenu|topmenu|menu)[^'"]*['"][^>]*>.*?</nav>`,
		`(?is)<ul\b[^>]*id\s*=\s*['"](?:main_menu|menu)[^'"]*['"][^>]*>.*?</ul>`,
		`(?is)<li\b[^>]*class\s*=\s*['"][^'"]*\b(?:inactive|active|ZMSFolder\d*|ZMSDocument\d*)\b[^'"]*['"][^>]*>.*?</li>`,
	)...)

var highPriorityPatterns = []string{
	`(?is)<(?:div|ul|ol|section)\b[^>]*(?:class|id)\s*=\s*['"][^'"]*\b(?:breadcrumb|bread[-_]?nav|nav|navigation|tagline|menu[-_]?bar|top[-_]?nav|site[-_]?nav|main[-_]?navigation|nav[-_]?container|sub[-_]?nav|menu[-_]?container|menu|sub[-_]?menu|nav[-_]?menu|quick[-_]?nav|quick[-_]?links)\b[^'"]*['"][^>]*>.*?</(?:div|ul|ol|section)>`,
	`(?is)<(?:div|ul|ol|section|li)\b[^>]*(?:class|id)\s*=\s*['"][^'"]*\b(?:breadcrumb|bread[-_]?nav|nav|navigation|tagline|menu[-_]?bar|top[-_]?nav|site[-_]?nav|main[-_]?navigation|nav[-_]?container|sub[-_]?nav|menu[-_]?container|menu|sub[-_]?menu|nav[-_]?menu|quick[-_]?nav|quick[-_]?links|topright[-_]?button|wrapper)\b[^'"]*['"][^>]*>.*?</(?:div|ul|ol|section|li)>`,
	`(?is)<(?:header|footer)\b[^>]*>.*?</(?:header|footer)>`,
	`(?is)<div\b[^>]*(?:class|id)\s*=\s*['"][^'"]*\b(?:header|footer|site[-_]?footer|page[-_]?footer|site[-_]?header|nav[-_]?footer|group[-_]?header|banner[-_]?header|wrapper)\b[^'"]*['"][^>]*>.*?</div>`,
	`(?is)<(?:div|section|aside)\b[^>]*(?:class|id)\s*=\s*['"][^'"]*\b(?:cookies?|consent|banner|popup|modal|cookie[-_]?notices?|cookie[-_]?consents?|cookie[-_]?policys?|gdpr|privacy[-_]?banner)\b[^'"]*['"][^>]*>.*?</(?:div|section|aside)>`,
	`(?is)<(?:div|aside|section)\b[^>]*(?:class|id)\s*=\s*['"][^'"]*\b(?:sidebar|left|right|side[-_]?nav|widget[-_]?area|nav[-_]?panel)\b[^'"]*['"][^>]*>.*?</(?:div|aside|section)>`,
}

var mediumPriorityPatterns = []string{
	`(?is)<div\b[^>]*(?:class|id)\s*=\s*['"][^'"]*\b(?:search|search[-_]?form|search[-_]?box|search[-_]?bar|cse[-_]?search[-_]?form)\b[^'"]*['"][^>]*>.*?</div>`,
	`(?is)<(?:div|nav|ul)\b[^>]*(?:class|id)\s*=\s*['"][^'"]*\bmobile(?:[-_]?(?:nav|menu|back|toggle|dropdown|loading))?\b[^'"]*['"][^>]*>.*?</(?:div|nav|ul)>`,
	`(?is)<(?:div|ul|select)\b[^>]*(?:class|id)\s*=\s*['"][^'"]*\b(?:lang|language|lang[-_]?switch)\b[^'"]*['"][^>]*>.*?</(?:div|ul|select)>`,
	`(?is)<(?:div|section)\b[^>]*(?:class|id)\s*=\s*['"][^'"]*\b(?:overlay|modal[-_]?overlay|popup[-_]?overlay)\b[^'"]*['"][^>]*>.*?</(?:div|section)>`,
	`(?is)<(?:button|input|div)\b[^>]*(?:class|id)\s*=\s*['"][^'"]*\b(?:btns?|buttons?|btt|topright[-_]?button)\b[^'"]*['"][^>]*(?:>.*?</(?:button|input|div)>|/??>)`,
	`(?is)<a\b[^>]*href\s*=\s*['"][^'"]*\b(?:doi\.org|journals\.aps\.org|dx\.doi\.org|DOI:)\b[^'"]*['"][^>]*>.*?</a>`,
	// Original guarded this with a negative lookahead (no nested <main>/<article>);
	// RE2 has no lookahead, so this is the loosened form, see package doc.
	`(?is)<(?:div|section)\b[^>]*(?:class|id)\s*=\s*['"][^'"]*\b(?:wrapper|container|main[-_]?container|page[-_]?wrapper|site[-_]?wrapper)\b[^'"]*['"][^>]*>.*?</(?:div|section)>`,
}

var lowPriorityPatterns = []string{
	`(?is)<li\b[^>]*(?:class\s*=\s*['"][^'"]*\b(?:inactive|folder|nav[-_]?item|menu[-_]?item|ZMSFolder\d*|ZMSDocument\d*)\b[^'"]*['"])??[^>]*>.*?</li>`,
	`(?is)<(?:div|section|aside|span)\b[^>]*(?:class|id)\s*=\s*['"][^'"]*\b(?:footnotes?|foot[-_]?notes?|references?|citations?|endnotes?)\b[^'"]*['"][^>]*>.*?</(?:div|section|aside|span)>`,
	`(?is)<a\b[^>]*(?:id\s*=\s*['"](?:mobile_back_to_desy|mobile[-_]?nav[-_]?toggle|search|phone)['"]|(?:class|id)\s*=\s*['"][^'"]*\b(?:inactive|ZMSFolder\d*|ZMSDocument\d*)\b[^'"]*['"]|href\s*=\s*['"][^'"]*(?:index_print)[^'"]*['"]|target\s*=\s*['"]_blank['"])??[^>]*>.*?</a>`,
	`(?is)<img\b[^>]*(?:id\s*=\s*['"][^'"]*(?:phonebook_icon|print_icon|lang_icon|logo)[^'"]*['"]|alt\s*=\s*['"][^'"]*(?:phone\s+book|loading|Logo)[^'"]*['"]|src\s*=\s*['"][^'"]*(?:loading\.gif|logo[-_]?\w*\.gif|arrow_large_white\.png)[^'"]*['"])??[^>]*/??>`,
	`(?is)<[^>]*role\s*=\s*['"]navigation['"][^>]*>.*?</[^>]+>`,
	`(?is)<ul\b[^>]*>(?:\s*<li\b[^>]*(?:class|id)\s*=\s*['"][^'"]*\b(?:inactive|ZMSFolder\d*|ZMSDocument\d*)\b[^'"]*['"][^>]*>.*?</li>\s*)+</ul>`,
}

var specializedPatterns = []string{
	`(?i)Deutsches\s+Elektronen-Synchrotron\s+DESY\s+A\s+Research\s+Centre\s+of\s+the\s+Helmholtz\s+Association`,
	`(?i)Data\s+Privacy\s+Policy\s*\|\s*Declaration\s+of\s+Accessibility\s*\|\s*Imprint\s*©[^.]*`,
	`(?i)A\s+Research\s+Centre\s+of\s+the\s+Helmholtz\s+Association`,
	`(?i)©\s*\d{4}\s*Deutsches\s+Elektronen-Synchrotron\s+DESY.*?(?:Helmholtz\s+Association)?`,
	`(?i)Deutsches\s*Elektronen-Synchrotron`,
	`(?i)Data\s+Privacy\s+Policy\s*\|.*?(?:Imprint|©)`,
	`(?i)Impressum\s*/\s*Datenschutz\s*/\s*Erklärung\s+zur\s+Barrierefreiheit`,
	`(?i)\bSprungnavigation\b`,
	`(?i)\bZielgruppennavigation\b`,
	`(?i)\bServicefunktionen\b`,
	`(?i)\bBreadcrumb\b`,
	`(?i)\bFooter\b`,
	`(?i)\bDesy\s+Global\b`,
	`(?i)\bZum\s+Untermenü\b`,
	`(?i)\bZum\s+Inhalt\b`,
	`(?i)\bZum\s+Hauptmenu\b`,
	`(?i)\bInfos\s*&\s*Services\b`,
	`(?i)\bLeichte\s+Sprache\b`,
	`(?i)\bGebärdensprache\b`,
}

var cleanupPatterns = []string{
	`(?is)<!--\s*(?://wrapper\s*//\s*-->.*?<!--\s*/standard_html_header\s*--|/?\s*standard_html_header\s*-->)`,
	`(?is)<!--[^>]*(?:wrapper|overall|standard_html)[^>]*-->`,
	`(?i)<!--[^>]*tal:attributes[^>]*-->`,
	`(?is)<!--a\s+tal:.*?</a-->`,
	`(?is)<svg[^>]*>.*?</svg>`,
	`(?i)title\s*=\s*['"][^'"]*(?:Aktuelle|Seminare|Events)[^'"]*['"]`,
	`(?i)<[^>]*style\s*=\s*['"][^'"]*(?:display\s*:\s*block|text-align\s*:\s*right|margin|opacity)[^'"]['"][^>]*>`,
}

var textCleanupPatterns = []string{
	`(?i)\bNavigation\b`,
	`(?i)\bDatenschutzerklärung\b`,
	`(?i)\bErklärung\s+zur\s+Barrierefreiheit\b`,
	`(?i)\bBack\s+to\s+Top\b`,
	`(?i)\b(?:nav|menu|breadcrumb|navigation)\s*[:\-|]\s*`,
	`(?i)\b(?:Home|Startseite|Kontakt|Suche|Login|Anmelden)\b`,
	`(?i)\b(?:Archiv|Archive)\s*\d{4}`,
	`(?i)\b(?:Page\s+\d+|Seite\s+\d+|\d+\s+of\s+\d+)\b`,
	`(?i)\b(?:cookie|gdpr|popup|consent)\b`,
}
