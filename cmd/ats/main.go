// Command ats ingests resumes into a classified, namespace-partitioned
// vector store and serves recruiter free-text search over the result.
package main

import "atsresume/cmd/handlers"

func main() {
	handlers.Execute()
}
