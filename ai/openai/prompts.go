package openai

import "github.com/tmc/langchaingo/prompts"

const groundedAnswerTemplate = `You are an AI assistant that helps users with questions about their PDF documents.
Use the following pieces of context to answer the question at the end.
If you don't know the answer, just say you don't know. DO NOT make up an answer.

Context:
{{.context}}

Question: {{.question}}

Answer:
`

const fuseContextsTemplate = `You are an AI assistant that helps users with questions about their PDF documents.
Use the following information from the knowledge graph to enhance your answer.
The knowledge graph represents connections between different parts of the document.

Context from Vector DB:
{{.vectorContext}}

Knowledge Graph Context:
{{.graphContext}}

Question: {{.question}}

Previous Answer: {{.previousAnswer}}

Provide a comprehensive answer that incorporates both the context from the vector database and the knowledge graph structure.
`

// groundedAnswerPrompt is the first-stage template: answer from the
// vector-retrieved context only.
var groundedAnswerPrompt = prompts.NewPromptTemplate(
	groundedAnswerTemplate,
	[]string{"context", "question"},
)

// fuseContextsPrompt is the second-stage template: combine both retrieval
// contexts with the first-stage answer.
var fuseContextsPrompt = prompts.NewPromptTemplate(
	fuseContextsTemplate,
	[]string{"vectorContext", "graphContext", "question", "previousAnswer"},
)
