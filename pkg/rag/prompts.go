package rag

import "fmt"

// NoMatch is returned as context when retrieval finds nothing usable.
const NoMatch = "No relevant information found."

// ResetGreeting is shown after a session's history is cleared.
const ResetGreeting = "How can I assist you with your documents today?"

const systemPrompt = `Answer the question as truthfully as possible using the provided context.
If the user wants or intents to file a complaint, then generate a response that says: To file a complaint, Write in the input box: "I want to file a complaint" and then follow the instructions.

If the user asks about a complaint status, then generate a response that says: To get a complaint details, Write in the input box: "Get complaint status along with the complaint ID".

If the answer is not contained within the text and you don't have enough information, say 'I don't have enough information to answer that question. Please provide more details or check the "Query Refinement" option to refine your question.'

Be concise, helpful, and informative.`

const refinerSystemPrompt = "You are a helpful assistant that refines user queries to make them more relevant for knowledge base retrieval."

func refinerPrompt(conversation, query string) string {
	return fmt.Sprintf("Given the following user query and conversation log, formulate a question that would be the most relevant to provide the user with an answer from a knowledge base.\n\nCONVERSATION LOG: \n%s\n\nQuery: %s\n\nRefined Query:", conversation, query)
}

func answerInput(context, query string) string {
	return fmt.Sprintf("Context:\n %s \n\n Query:\n%s", context, query)
}
