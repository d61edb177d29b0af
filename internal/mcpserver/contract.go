package mcpserver

// DocumentFormatContract describes the canonical task-document format
// that LLM consumers must follow when capturing items or editing
// documents through the Raido tools.
const DocumentFormatContract = `# Raido Document Format Contract

Every Markdown document stored in Raido MUST follow this structure.

## Structure

` + "```" + `markdown
---
created: 2025-06-15                 # OPTIONAL – ISO-8601 date
priority: medium                    # OPTIONAL – low | medium | high
status: active                      # OPTIONAL – project lifecycle state
tags:                               # OPTIONAL – YAML list
  - sphere/work
  - urgent
---

# Project title

Free-form description.

## Next actions
- [ ] An open action
- [w] Waiting on someone else
- [x] A finished action ✅ 2025-06-14

## Discussion
- Newest discussion note first

## References
- Newest reference first
` + "```" + `

## Task lines

1. **Grammar.** A task line is ` + "`" + `- [ ] text` + "`" + `: bullet, status bracket, action text.
   ` + "`" + `*` + "`" + ` bullets and leading indentation are accepted on read.
2. **Status brackets:** ` + "`" + `[ ]` + "`" + ` open, ` + "`" + `[x]` + "`" + ` (or ` + "`" + `[X]` + "`" + `) done, ` + "`" + `[w]` + "`" + ` waiting-for.
3. **Dates** are emoji-annotated, always YYYY-MM-DD: ` + "`" + `✅ 2025-06-14` + "`" + ` marks
   completion (done lines only), ` + "`" + `📅 2025-07-01` + "`" + ` marks the due date.
4. **Sphere tags** ride inline as ` + "`" + `#sphere/work` + "`" + `. The sphere vocabulary is
   server-configured; unknown sphere tags are rejected.
5. **Action text** is one line, concrete, and starts with a verb
   ("Call Sam about the venue", not "venue?").

## Capture categories

The ` + "`" + `capture_action` + "`" + ` tool files one classified item. Category decides the landing spot:

- ` + "`" + `action` + "`" + ` – appended under the target project's "## Next actions";
  without a target it lands on the shared next-actions list.
- ` + "`" + `project` + "`" + ` – a new project document is created from the template.
- ` + "`" + `reference` + "`" + ` – prepended to the shared reference list.
- ` + "`" + `someday` + "`" + ` – appended to the someday/maybe list.

## Anchors

Mutating tools return anchors: ` + "`" + `{path, line, content, display_text}` + "`" + `. Keep them.
To flip a task's status later, pass the anchor's path, line, and content to
` + "`" + `set_task_status` + "`" + `; the server re-locates the line if the document drifted and
reports the fresh anchor back.

## Rules

1. **File paths** end with ` + "`" + `.md` + "`" + ` and use forward slashes.
2. **Section headings are verbatim.** The server matches headings ignoring
   only the leading ` + "`" + `#` + "`" + ` marks; do not re-case or re-word them.
3. **Never renumber lines yourself.** Line numbers are 1-indexed and come
   from anchors returned by the tools.
4. **Encoding** is UTF-8 with a trailing newline.
`
