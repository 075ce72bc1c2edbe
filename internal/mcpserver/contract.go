package mcpserver

// MemoryFormatContract describes the canonical on-disk memory format for
// consumers that read or edit memory files directly.
const MemoryFormatContract = `# Muninn Memory Format Contract

Every memory is one UTF-8 Markdown file. The store owns the layout below;
hand-edited files that drift from it are re-normalized on the next write.

## Structure

` + "```" + `markdown
---
id: 01J8ZQ4WXYZABCDEFGHJKMNPQR
timestamp: 2025-01-20T14:03:07.412Z
complexity: 3
category: ops
project: billing
tags: [deploy, runbook]
priority: high
status: active
related_memories: [01J8ZQ55AAAABBBBCCCCDDDDEE]
access_count: 4
last_accessed: 2025-02-01T09:12:44.001Z
metadata:
  content_type: code
  language: go
  size: 512
  mermaid_diagram: false
---
Memory content starts on the line after the closing delimiter.
` + "```" + `

## Rules

1. **The metadata block is mandatory.** Two ` + "`" + `---` + "`" + ` delimiter lines, the first
   at the very top of the file; the content begins immediately after the second.
2. **Key order is fixed** as in the example above. Optional keys (category,
   project, tags, related_memories, language) are omitted entirely when empty,
   never written as null.
3. **id** is a ULID assigned by the store. Never invent or reuse ids.
4. **Timestamps** are UTC with millisecond precision.
5. **complexity and metadata are derived.** They are recomputed from the content
   on every read and write; editing them by hand has no lasting effect.
6. **priority** is one of low, medium, high. **status** is one of active,
   archived, reference.
7. **Lists** are written inline: ` + "`" + `[a, b, c]` + "`" + `.
8. **File names** follow ` + "`" + `YYYY-MM-DD-<slug>-<6 digits>.md` + "`" + `; files live one
   level below the store root, in ` + "`" + `<root>/<project>/` + "`" + `. The ` + "`" + `default` + "`" + `
   partition always exists.
9. Files the parser cannot read are skipped and reported, never deleted.
`
