package compliance

// Guidelines is the fixed rule set every document is assessed against.
const Guidelines = `
1. Grammar Rules:
   - Use proper subject-verb agreement
   - Correct use of tenses
   - Proper punctuation and capitalization
   - Avoid run-on sentences
   - Do not flag email addresses for capitalization or grammar issues.

2. Sentence Structure:
   - Use clear and concise sentences
   - Avoid overly complex sentence structures
   - Maintain proper sentence flow
   - Use active voice when possible

3. Clarity and Style:
   - Use simple and clear language
   - Avoid unnecessary jargon
   - Maintain consistent tone
   - Use proper paragraph structure

4. Writing Rules:
   - Use proper spelling
   - Maintain consistent formatting
   - Use appropriate transitions
   - Ensure logical flow of ideas
`

const reportSchema = `{
    "overall_compliance": "COMPLIANT" or "NON_COMPLIANT",
    "compliance_score": <score out of 100>,
    "violations": [
        {
            "category": "<Grammar/Structure/Clarity/Writing>",
            "issue": "<description of the issue>",
            "location": "<approximate location in text>",
            "severity": "<High/Medium/Low>"
        }
    ],
    "suggestions": [
        "<general improvement suggestions>"
    ],
    "summary": "<overall summary of compliance status>"
}`
