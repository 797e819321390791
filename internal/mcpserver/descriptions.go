package mcpserver

// Tool descriptions with interpretation guidance for LLMs.

func describeConvertSource() string {
	return `Converts defineClass(name, {members}) factory declarations in a JavaScript or TypeScript source text into native ES6 classes.

USE WHEN:
- Previewing how a single legacy class will look after migration
- Converting a snippet that is not saved on disk
- Checking why a declaration is skipped

INTERPRETING RESULTS:
- changed=false with skipped=no_factory_call: the text never mentions a factory name
- changed=false with skipped=no_match: a factory name appears but no call has the supported shape
- Warnings explain declarations that were skipped or members passed through unchanged
- An error means the source has syntax errors inside a matched declaration; nothing was converted

RETURNS:
- source: the converted text (identical to the input when nothing changed)
- classes: name, superclass, line and member counts per converted class
- diagnostics: line, severity, class and message`
}

func describeConvertPaths() string {
	return `Converts every JavaScript and TypeScript file under the given paths from defineClass factory declarations to native ES6 classes, writing files in place.

USE WHEN:
- Migrating a directory or a whole repository
- Estimating the size of a migration with dry_run=true
- Re-running after edits; already converted files are left unchanged

INTERPRETING RESULTS:
- changed_files counts files that were rewritten (or would be, in a dry run)
- skipped files contain no convertible declaration
- failures list files that could not be parsed or written; they are left untouched
- node_modules, vendor and gitignored files are never processed

RETURNS:
- files: per-file path, changed, written, classes and diagnostics
- failures: path and error message
- summary: total, changed, skipped and failed files, class and warning counts`
}
