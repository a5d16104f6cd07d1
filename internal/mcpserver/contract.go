package mcpserver

// BlockFormatContract describes the canonical block format that LLM
// consumers should follow when creating note content.
const BlockFormatContract = `# Noteflow Block Format Contract

Note content is a JSON array of block objects. Every block MUST follow this
structure.

## Structure

` + "```" + `json
[
  {
    "id": "optional; generated when omitted",
    "type": "paragraph",
    "content": "Plain text of the block",
    "properties": {}
  }
]
` + "```" + `

## Rules

1. **` + "`" + `type` + "`" + ` is required** and must be one of: ` + "`" + `paragraph` + "`" + `, ` + "`" + `heading1` + "`" + `,
   ` + "`" + `heading2` + "`" + `, ` + "`" + `heading3` + "`" + `, ` + "`" + `bulleted-list` + "`" + `, ` + "`" + `numbered-list` + "`" + `, ` + "`" + `todo` + "`" + `,
   ` + "`" + `task` + "`" + `, ` + "`" + `code` + "`" + `, ` + "`" + `quote` + "`" + `, ` + "`" + `divider` + "`" + `, ` + "`" + `table` + "`" + `, ` + "`" + `image` + "`" + `, ` + "`" + `embed` + "`" + `.
2. **` + "`" + `content` + "`" + ` is plain text.** No Markdown markup; headings carry their
   weight in the type, not in ` + "`" + `#` + "`" + ` prefixes.
3. **List items are one block each.** A three-item bulleted list is three
   ` + "`" + `bulleted-list` + "`" + ` blocks in sequence.
4. **` + "`" + `todo` + "`" + ` blocks** use ` + "`" + `properties.checked` + "`" + ` (boolean).
5. **` + "`" + `task` + "`" + ` blocks** are managed by the task system. Do not create them
   directly; use the task tools instead.
6. **A note always has at least one block.** An empty content array is
   replaced with a single empty paragraph on save.

## Example

` + "```" + `json
[
  { "type": "heading1", "content": "Weekly standup" },
  { "type": "paragraph", "content": "Attendees: Alice, Bob." },
  { "type": "bulleted-list", "content": "Review the design doc" },
  { "type": "bulleted-list", "content": "Update the roadmap" },
  { "type": "todo", "content": "Send summary email", "properties": { "checked": false } }
]
` + "```" + `
`
